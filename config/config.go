package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds everything the server reads from the environment
type Config struct {
	Env         string
	Port        string
	SiteTitle   string
	SiteDesc    string
	SiteURL     string
	EditorEmail string

	StoreBackend string // "firestore", "mongo" or "memory"

	FirebaseProjectID   string
	FirebaseCredsBase64 string
	FirebaseCredsFile   string
	FirebaseAPIKey      string
	GoogleClientID      string

	MongoURI string
	DBName   string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret         string
	SessionTTL        time.Duration
	AdminPasswordHash string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string

	CORSAllowedOrigins []string
	UploadDir          string
	ContactResetDelay  time.Duration

	LogLevel string
	LogFile  string
}

// IsDevelopment reports whether ENV names a development deployment
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "dev"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "production")
	v.SetDefault("PORT", "8080")
	v.SetDefault("SITE_TITLE", "Portfolio")
	v.SetDefault("SITE_DESCRIPTION", "Portfolio of a software engineer")
	v.SetDefault("STORE_BACKEND", "firestore")
	v.SetDefault("DB_NAME", "portfolio")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SMTP_PORT", 2525)
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("CONTACT_RESET_DELAY", "5s")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads the .env file when present and then the process environment
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	return v
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) *Config {
	// MONGODB_URI is accepted as an alias, as older deployments used it
	mongoURI := v.GetString("MONGO_URI")
	if mongoURI == "" {
		mongoURI = v.GetString("MONGODB_URI")
	}

	return &Config{
		Env:         v.GetString("ENV"),
		Port:        v.GetString("PORT"),
		SiteTitle:   v.GetString("SITE_TITLE"),
		SiteDesc:    v.GetString("SITE_DESCRIPTION"),
		SiteURL:     strings.TrimRight(v.GetString("SITE_URL"), "/"),
		EditorEmail: strings.TrimSpace(v.GetString("EDITOR_EMAIL")),

		StoreBackend: strings.ToLower(v.GetString("STORE_BACKEND")),

		FirebaseProjectID:   v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCredsBase64: v.GetString("FIREBASE_CREDENTIALS_BASE64"),
		FirebaseCredsFile:   v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		FirebaseAPIKey:      v.GetString("FIREBASE_API_KEY"),
		GoogleClientID:      v.GetString("GOOGLE_CLIENT_ID"),

		MongoURI: mongoURI,
		DBName:   v.GetString("DB_NAME"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		JWTSecret:         v.GetString("JWT_SECRET"),
		SessionTTL:        v.GetDuration("SESSION_TTL"),
		AdminPasswordHash: v.GetString("ADMIN_PASSWORD_HASH"),

		SMTPHost: v.GetString("SMTP_HOST"),
		SMTPPort: v.GetInt("SMTP_PORT"),
		SMTPUser: v.GetString("SMTP_USER"),
		SMTPPass: v.GetString("SMTP_PASS"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		UploadDir:          v.GetString("UPLOAD_DIR"),
		ContactResetDelay:  v.GetDuration("CONTACT_RESET_DELAY"),

		LogLevel: v.GetString("LOG_LEVEL"),
		LogFile:  v.GetString("LOG_FILE"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
