package services

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
	"github.com/golang-jwt/jwt"
	"github.com/lestrrat-go/jwx/jwk"
)

// IDTokenVerifier is the part of the Firebase auth client used here
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseTokenProvider verifies Firebase Authentication ID tokens
type FirebaseTokenProvider struct {
	verifier IDTokenVerifier
}

func NewFirebaseTokenProvider(verifier IDTokenVerifier) *FirebaseTokenProvider {
	return &FirebaseTokenProvider{verifier: verifier}
}

func (p *FirebaseTokenProvider) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := p.verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	provider := token.Firebase.SignInProvider
	if provider == "" {
		provider = "firebase"
	}
	return &Identity{
		UID:         token.UID,
		Email:       email,
		DisplayName: name,
		Provider:    provider,
	}, nil
}

const googleCertsURL = "https://www.googleapis.com/oauth2/v3/certs"

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// GoogleTokenProvider verifies Google Sign-In ID tokens against Google's
// published signing keys
type GoogleTokenProvider struct {
	clientID string
	certsURL string
}

func NewGoogleTokenProvider(clientID string) *GoogleTokenProvider {
	return &GoogleTokenProvider{clientID: clientID, certsURL: googleCertsURL}
}

func (p *GoogleTokenProvider) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	parsed, err := jwt.Parse(idToken, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, fmt.Errorf("token has no key id")
		}

		keySet, err := jwk.Fetch(ctx, p.certsURL)
		if err != nil {
			return nil, fmt.Errorf("fetching google keys: %w", err)
		}
		key, found := keySet.LookupKeyID(kid)
		if !found {
			return nil, fmt.Errorf("google key %q not found", kid)
		}

		var pubkey interface{}
		if err := key.Raw(&pubkey); err != nil {
			return nil, fmt.Errorf("parsing google key: %w", err)
		}
		return pubkey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidCredentials)
	}

	iss, _ := claims["iss"].(string)
	if !googleIssuers[iss] {
		return nil, fmt.Errorf("%w: issuer %q", ErrInvalidCredentials, iss)
	}
	if !audienceContains(claims["aud"], p.clientID) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrInvalidCredentials)
	}

	email, _ := claims["email"].(string)
	sub, _ := claims["sub"].(string)
	name, _ := claims["name"].(string)
	if email == "" || sub == "" {
		return nil, fmt.Errorf("%w: missing email or sub", ErrInvalidCredentials)
	}
	// Google sends email_verified as a bool, older tokens as the string "true"
	switch v := claims["email_verified"].(type) {
	case bool:
		if !v {
			return nil, fmt.Errorf("%w: email not verified", ErrInvalidCredentials)
		}
	case string:
		if v != "true" {
			return nil, fmt.Errorf("%w: email not verified", ErrInvalidCredentials)
		}
	}

	return &Identity{
		UID:         sub,
		Email:       email,
		DisplayName: name,
		Provider:    "google.com",
	}, nil
}

func audienceContains(aud interface{}, clientID string) bool {
	if clientID == "" {
		return false
	}
	switch v := aud.(type) {
	case string:
		return v == clientID
	case []interface{}:
		for _, a := range v {
			if s, ok := a.(string); ok && s == clientID {
				return true
			}
		}
	}
	return false
}
