package config

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// InitFirebase initializes the Firebase Admin SDK. Credentials come from
// FIREBASE_CREDENTIALS_BASE64 first, then GOOGLE_APPLICATION_CREDENTIALS, then
// a service account file in the working directory.
func InitFirebase(ctx context.Context, cfg *Config, logger *zap.Logger) (*firebase.App, error) {
	fbConfig := &firebase.Config{
		ProjectID: cfg.FirebaseProjectID,
	}

	// Check for base64 encoded credentials first
	if cfg.FirebaseCredsBase64 != "" {
		logger.Info("Using Firebase credentials from base64 environment variable")
		decoded, err := base64.StdEncoding.DecodeString(cfg.FirebaseCredsBase64)
		if err != nil {
			return nil, fmt.Errorf("decoding base64 credentials: %w", err)
		}

		app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsJSON(decoded))
		if err != nil {
			return nil, fmt.Errorf("initializing firebase app: %w", err)
		}
		return app, nil
	}

	// Fallback to file-based credentials
	credFile := cfg.FirebaseCredsFile
	if credFile == "" {
		possiblePaths := []string{
			"firebase-adminsdk.json",
			"../firebase-adminsdk.json",
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				credFile = path
				break
			}
		}

		if credFile == "" {
			return nil, fmt.Errorf("firebase service account file not found; set GOOGLE_APPLICATION_CREDENTIALS, FIREBASE_CREDENTIALS_BASE64, or place the file in one of %v", possiblePaths)
		}
	}

	logger.Info("Using Firebase credentials file", zap.String("path", credFile))
	app, err := firebase.NewApp(ctx, fbConfig, option.WithCredentialsFile(credFile))
	if err != nil {
		return nil, fmt.Errorf("initializing firebase app: %w", err)
	}
	return app, nil
}
