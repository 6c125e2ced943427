package models

import "time"

// Session is a signed-in identity as the service sees it
type Session struct {
	UID         string    `json:"uid"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName,omitempty"`
	Provider    string    `json:"provider"`
	TokenID     string    `json:"-"`
	IssuedAt    time.Time `json:"issuedAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// LoginRequest is the email/password sign-in body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OAuthRequest carries an ID token obtained from a provider popup
type OAuthRequest struct {
	Provider string `json:"provider" validate:"required"`
	IDToken  string `json:"idToken" validate:"required"`
}

// AuthResponse is returned after a successful sign-in
type AuthResponse struct {
	Token    string   `json:"token"`
	User     *Session `json:"user"`
	IsEditor bool     `json:"isEditor"`
}

// Response is the envelope every JSON endpoint answers with
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
