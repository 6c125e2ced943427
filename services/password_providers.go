package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const identityToolkitEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// IdentityToolkitProvider signs in against Firebase Authentication's REST API
type IdentityToolkitProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewIdentityToolkitProvider creates a provider for the given web API key
func NewIdentityToolkitProvider(apiKey string) *IdentityToolkitProvider {
	return &IdentityToolkitProvider{
		apiKey:   apiKey,
		endpoint: identityToolkitEndpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type identityToolkitResponse struct {
	LocalID     string `json:"localId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Error       *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Error messages the API uses for a wrong email or password
var identityToolkitCredentialErrors = []string{
	"EMAIL_NOT_FOUND",
	"INVALID_PASSWORD",
	"INVALID_LOGIN_CREDENTIALS",
	"INVALID_EMAIL",
	"USER_DISABLED",
}

func (p *IdentityToolkitProvider) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+"?key="+p.apiKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading identity toolkit response: %w", err)
	}

	var parsed identityToolkitResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decoding identity toolkit response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			for _, code := range identityToolkitCredentialErrors {
				// messages look like "INVALID_PASSWORD" or "TOO_MANY_ATTEMPTS_TRY_LATER : ..."
				if strings.HasPrefix(parsed.Error.Message, code) {
					return nil, ErrInvalidCredentials
				}
			}
			return nil, fmt.Errorf("identity toolkit returned %d: %s", resp.StatusCode, parsed.Error.Message)
		}
		return nil, fmt.Errorf("identity toolkit returned %d", resp.StatusCode)
	}

	return &Identity{
		UID:         parsed.LocalID,
		Email:       parsed.Email,
		DisplayName: parsed.DisplayName,
		Provider:    "password",
	}, nil
}

// StaticPasswordProvider accepts only the editor's email with a password
// matching a bcrypt hash from configuration
type StaticPasswordProvider struct {
	email string
	hash  []byte
}

func NewStaticPasswordProvider(email, bcryptHash string) *StaticPasswordProvider {
	return &StaticPasswordProvider{email: strings.TrimSpace(email), hash: []byte(bcryptHash)}
}

func (p *StaticPasswordProvider) SignInWithPassword(ctx context.Context, email, password string) (*Identity, error) {
	if p.email == "" || len(p.hash) == 0 {
		return nil, ErrInvalidCredentials
	}
	if !strings.EqualFold(email, p.email) {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(p.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &Identity{
		UID:      "editor",
		Email:    p.email,
		Provider: "password",
	}, nil
}
