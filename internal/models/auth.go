package models

import "github.com/golang-jwt/jwt/v5"

// TokenTypeRefresh marks refresh tokens structurally, not just by where they
// are stored.
const TokenTypeRefresh = "refresh"

// LoginRequest holds credentials for authenticating a user.
type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IP        string `json:"-"`
	UserAgent string `json:"-"`
}

// TokenResponse returns the issued token pair. The refresh token is echoed
// back unchanged on refresh since it is not rotated.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
}

// RefreshRequest exchanges a refresh token for a new access token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest optionally names one refresh token to revoke alongside the
// current access token.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RegisterRequest holds the payload for creating a new account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3"`
	Password string `json:"password" validate:"required,min=8"`
}

// TokenClaims represents the JWT payload for access and refresh tokens.
// Subject carries the username; TokenType is empty for access tokens.
type TokenClaims struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email,omitempty"`
	IsAdmin   bool   `json:"is_admin,omitempty"`
	TokenType string `json:"type,omitempty"`
	jwt.RegisteredClaims
}
