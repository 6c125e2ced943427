package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HSouheill/portfolio_backend/models"
)

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUnsupportedProvider = errors.New("unsupported sign-in provider")
	ErrInvalidSession      = errors.New("invalid or expired session")
)

// Identity is what an identity provider vouches for after a sign-in
type Identity struct {
	UID         string
	Email       string
	DisplayName string
	Provider    string
}

// PasswordProvider checks an email/password pair
type PasswordProvider interface {
	SignInWithPassword(ctx context.Context, email, password string) (*Identity, error)
}

// TokenProvider verifies an ID token returned by an OAuth popup
type TokenProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
}

// AuthEventType tells subscribers what happened
type AuthEventType string

const (
	AuthSignedIn  AuthEventType = "signed_in"
	AuthSignedOut AuthEventType = "signed_out"
)

// AuthEvent is delivered to every subscriber on sign-in and sign-out
type AuthEvent struct {
	Type     AuthEventType   `json:"type"`
	Session  *models.Session `json:"user"`
	IsEditor bool            `json:"isEditor"`
}

// sessionClaims are the claims of the service's own session token
type sessionClaims struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider"`
	jwt.StandardClaims
}

// AuthOptions configures an AuthService
type AuthOptions struct {
	Secret      string
	TTL         time.Duration
	EditorEmail string
	Passwords   PasswordProvider
	Tokens      map[string]TokenProvider
	Revocations RevocationStore
	Logger      *zap.Logger
}

// AuthService signs visitors in and out and tells subscribers about it.
// It issues its own HS256 session tokens once a provider accepts a sign-in.
type AuthService struct {
	secret      []byte
	ttl         time.Duration
	editorEmail string
	passwords   PasswordProvider
	tokens      map[string]TokenProvider
	revocations RevocationStore
	logger      *zap.Logger

	mu          sync.RWMutex
	subscribers map[int]func(AuthEvent)
	nextSubID   int
}

// NewAuthService creates an AuthService
func NewAuthService(opts AuthOptions) *AuthService {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.Revocations == nil {
		opts.Revocations = NewMemoryRevocations()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	tokens := make(map[string]TokenProvider, len(opts.Tokens))
	for name, p := range opts.Tokens {
		tokens[strings.ToLower(name)] = p
	}
	return &AuthService{
		secret:      []byte(opts.Secret),
		ttl:         opts.TTL,
		editorEmail: strings.TrimSpace(opts.EditorEmail),
		passwords:   opts.Passwords,
		tokens:      tokens,
		revocations: opts.Revocations,
		logger:      opts.Logger,
		subscribers: make(map[int]func(AuthEvent)),
	}
}

// SignIn authenticates with email and password
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	if s.passwords == nil {
		return nil, fmt.Errorf("%w: password sign-in is not configured", ErrUnsupportedProvider)
	}
	identity, err := s.passwords.SignInWithPassword(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return nil, err
	}
	return s.startSession(identity)
}

// SignInWithProvider authenticates with an ID token from the named provider
func (s *AuthService) SignInWithProvider(ctx context.Context, provider, idToken string) (*models.AuthResponse, error) {
	p, ok := s.tokens[strings.ToLower(provider)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, provider)
	}
	identity, err := p.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return s.startSession(identity)
}

func (s *AuthService) startSession(identity *Identity) (*models.AuthResponse, error) {
	if identity.Email == "" {
		return nil, fmt.Errorf("%w: identity has no email", ErrInvalidCredentials)
	}

	now := time.Now()
	session := &models.Session{
		UID:         identity.UID,
		Email:       identity.Email,
		DisplayName: identity.DisplayName,
		Provider:    identity.Provider,
		TokenID:     uuid.NewString(),
		IssuedAt:    now.Truncate(time.Second),
		ExpiresAt:   now.Add(s.ttl).Truncate(time.Second),
	}

	claims := &sessionClaims{
		UID:      session.UID,
		Email:    session.Email,
		Name:     session.DisplayName,
		Provider: session.Provider,
		StandardClaims: jwt.StandardClaims{
			Id:        session.TokenID,
			Subject:   session.UID,
			IssuedAt:  session.IssuedAt.Unix(),
			ExpiresAt: session.ExpiresAt.Unix(),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing session token: %w", err)
	}

	editor := s.IsEditor(session)
	s.logger.Info("signed in",
		zap.String("email", session.Email),
		zap.String("provider", session.Provider),
		zap.Bool("editor", editor),
	)
	s.publish(AuthEvent{Type: AuthSignedIn, Session: session, IsEditor: editor})

	return &models.AuthResponse{Token: token, User: session, IsEditor: editor}, nil
}

// CurrentUser resolves a session token. Missing, malformed, expired and
// revoked tokens all yield ErrInvalidSession.
func (s *AuthService) CurrentUser(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrInvalidSession
	}
	session, err := s.parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.revocations.IsRevoked(ctx, session.TokenID)
	if err != nil {
		s.logger.Warn("revocation lookup failed", zap.Error(err))
		return nil, fmt.Errorf("%w: revocation lookup failed", ErrInvalidSession)
	}
	if revoked {
		return nil, ErrInvalidSession
	}
	return session, nil
}

// SignOut revokes the session token until it would have expired anyway
func (s *AuthService) SignOut(ctx context.Context, token string) error {
	session, err := s.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	if err := s.revocations.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}

	s.logger.Info("signed out", zap.String("email", session.Email))
	s.publish(AuthEvent{Type: AuthSignedOut, Session: session, IsEditor: s.IsEditor(session)})
	return nil
}

// IsEditor reports whether the session belongs to the configured editor
func (s *AuthService) IsEditor(session *models.Session) bool {
	if session == nil || s.editorEmail == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(session.Email), s.editorEmail)
}

// Subscribe registers fn for auth events and returns a function that
// removes it
func (s *AuthService) Subscribe(fn func(AuthEvent)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

func (s *AuthService) publish(event AuthEvent) {
	s.mu.RLock()
	fns := make([]func(AuthEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(event)
	}
}

func (s *AuthService) parse(tokenString string) (*models.Session, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.Id == "" || claims.Email == "" {
		return nil, ErrInvalidSession
	}

	return &models.Session{
		UID:         claims.UID,
		Email:       claims.Email,
		DisplayName: claims.Name,
		Provider:    claims.Provider,
		TokenID:     claims.Id,
		IssuedAt:    time.Unix(claims.IssuedAt, 0),
		ExpiresAt:   time.Unix(claims.ExpiresAt, 0),
	}, nil
}
