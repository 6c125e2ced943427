package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/config"
	"github.com/HSouheill/portfolio_backend/controllers"
	"github.com/HSouheill/portfolio_backend/middleware"
	"github.com/HSouheill/portfolio_backend/repositories"
	"github.com/HSouheill/portfolio_backend/routes"
	"github.com/HSouheill/portfolio_backend/services"
	"github.com/HSouheill/portfolio_backend/utils"
	"github.com/HSouheill/portfolio_backend/web"
	"github.com/HSouheill/portfolio_backend/websocket"
)

func main() {
	cfg := config.Load()

	logger, err := config.NewLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, app := openStore(ctx, cfg, logger)
	defer store.Close()
	repo := repositories.NewContentRepository(store)

	authService := newAuthService(ctx, cfg, app, logger)

	// Create WebSocket hub; it is the one subscriber to auth state
	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)
	unsubscribe := authService.Subscribe(wsHub.HandleAuthEvent)
	defer unsubscribe()

	images := utils.NewImageStore(cfg.UploadDir)
	if err := images.InitializeStorage(); err != nil {
		logger.Fatal("failed to create upload directories", zap.Error(err))
	}
	mailer := utils.NewMailer(cfg, logger)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("failed to load templates", zap.Error(err))
	}

	// Create a new Echo instance
	e := echo.New()
	e.HideBanner = true
	e.Validator = utils.NewValidator()
	e.Renderer = renderer

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter()
	go rateLimiter.Cleanup(ctx, time.Minute)

	// Middleware
	e.Use(echoMiddleware.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.CORSWithConfig(middleware.NewCORSConfig(cfg.CORSAllowedOrigins, cfg.IsDevelopment())))
	e.Use(echoMiddleware.Secure())
	e.Use(middleware.SecurityHeadersWithConfig(middleware.SecurityConfig{
		ConnectDomains: []string{
			"https://identitytoolkit.googleapis.com",
			"https://securetoken.googleapis.com",
			"https://accounts.google.com",
		},
		ScriptDomains: []string{
			"https://www.gstatic.com",
			"https://apis.google.com",
			"https://accounts.google.com",
		},
		StyleDomains: []string{"https://accounts.google.com"},
		FrameDomains: []string{"https://accounts.google.com"},
		HSTS:         !cfg.IsDevelopment(),
	}))
	e.Use(rateLimiter.RateLimit())
	if !cfg.IsDevelopment() {
		e.Use(httpsRedirect())
	}

	site := controllers.SiteInfo{
		Title:          cfg.SiteTitle,
		Description:    cfg.SiteDesc,
		URL:            cfg.SiteURL,
		GoogleClientID: cfg.GoogleClientID,
	}
	routes.SetupRoutes(e, routes.Handlers{
		Auth:        controllers.NewAuthController(authService, logger, !cfg.IsDevelopment()),
		Content:     controllers.NewContentController(repo, wsHub, logger),
		Projects:    controllers.NewProjectController(repo, images, wsHub, logger),
		Contact:     controllers.NewContactController(repo, mailer, wsHub, cfg.ContactResetDelay, logger),
		Page:        controllers.NewPageController(repo, site, cfg.StoreBackend, logger),
		AuthService: authService,
		Hub:         wsHub,
		Upgrader:    websocket.NewUpgrader(cfg.CORSAllowedOrigins),
		Origins:     cfg.CORSAllowedOrigins,
		UploadDir:   cfg.UploadDir,
		Logger:      logger,
	})

	// Start server
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port), zap.String("store", cfg.StoreBackend))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// openStore connects the configured document store. The Firebase app is
// returned when one was initialized so auth can share it.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repositories.DocumentStore, *firebase.App) {
	switch cfg.StoreBackend {
	case "mongo", "mongodb":
		client, err := config.ConnectDB(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to connect to MongoDB", zap.Error(err))
		}
		return repositories.NewMongoStore(client, cfg.DBName), initFirebaseOptional(ctx, cfg, logger)
	case "memory":
		logger.Warn("using in-memory store; content is lost on restart")
		return repositories.NewMemoryStore(), initFirebaseOptional(ctx, cfg, logger)
	default:
		app, err := config.InitFirebase(ctx, cfg, logger)
		if err != nil {
			logger.Fatal("failed to initialize Firebase", zap.Error(err))
		}
		store, err := repositories.NewFirestoreStore(ctx, app)
		if err != nil {
			logger.Fatal("failed to open Firestore", zap.Error(err))
		}
		return store, app
	}
}

// initFirebaseOptional returns nil when no Firebase credentials are configured
func initFirebaseOptional(ctx context.Context, cfg *config.Config, logger *zap.Logger) *firebase.App {
	if cfg.FirebaseProjectID == "" && cfg.FirebaseCredsBase64 == "" && cfg.FirebaseCredsFile == "" {
		return nil
	}
	app, err := config.InitFirebase(ctx, cfg, logger)
	if err != nil {
		logger.Warn("Firebase unavailable; Firebase sign-in disabled", zap.Error(err))
		return nil
	}
	return app
}

func newAuthService(ctx context.Context, cfg *config.Config, app *firebase.App, logger *zap.Logger) *services.AuthService {
	secret := cfg.JWTSecret
	if secret == "" {
		if !cfg.IsDevelopment() {
			logger.Fatal("JWT_SECRET is required")
		}
		secret = uuid.NewString()
		logger.Warn("JWT_SECRET not set; sessions will not survive a restart")
	}

	var passwords services.PasswordProvider
	switch {
	case cfg.FirebaseAPIKey != "":
		passwords = services.NewIdentityToolkitProvider(cfg.FirebaseAPIKey)
	case cfg.AdminPasswordHash != "":
		passwords = services.NewStaticPasswordProvider(cfg.EditorEmail, cfg.AdminPasswordHash)
	default:
		logger.Warn("no password provider configured; email sign-in disabled")
	}

	tokens := map[string]services.TokenProvider{}
	if app != nil {
		client, err := app.Auth(ctx)
		if err != nil {
			logger.Warn("Firebase Auth unavailable", zap.Error(err))
		} else {
			tokens["firebase"] = services.NewFirebaseTokenProvider(client)
		}
	}
	if cfg.GoogleClientID != "" {
		tokens["google"] = services.NewGoogleTokenProvider(cfg.GoogleClientID)
	}

	var revocations services.RevocationStore
	if client := config.ConnectRedis(ctx, cfg, logger); client != nil {
		revocations = services.NewRedisRevocations(client)
	} else {
		revocations = services.NewMemoryRevocations()
	}

	if cfg.EditorEmail == "" {
		logger.Warn("EDITOR_EMAIL not set; nobody can edit content")
	}

	return services.NewAuthService(services.AuthOptions{
		Secret:      secret,
		TTL:         cfg.SessionTTL,
		EditorEmail: cfg.EditorEmail,
		Passwords:   passwords,
		Tokens:      tokens,
		Revocations: revocations,
		Logger:      logger,
	})
}

func httpsRedirect() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("X-Forwarded-Proto") == "http" {
				return c.Redirect(http.StatusMovedPermanently, "https://"+c.Request().Host+c.Request().RequestURI)
			}
			return next(c)
		}
	}
}
