package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest carries the login credentials.
type LoginRequest struct {
	Mail     string `json:"mail" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the successful authentication payload.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresIn   int64     `json:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"`
	User        User      `json:"user"`
}

// AccessClaims are the JWT claims carried by an access token.
type AccessClaims struct {
	UserID int    `json:"uid"`
	Mail   string `json:"mail"`
	jwt.RegisteredClaims
}
