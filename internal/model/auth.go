package model

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// TokenClaims are the JWT claims issued on login.
type TokenClaims struct {
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	PatientID string `json:"pid,omitempty"`
	jwt.RegisteredClaims
}
