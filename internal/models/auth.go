package models

import "github.com/golang-jwt/jwt/v5"

// JWTClaims is the access token payload. UserID is the student or admin row id.
type JWTClaims struct {
	UserID int64    `json:"user_id"`
	Role   UserRole `json:"role"`
	Email  string   `json:"email,omitempty"`
	jwt.RegisteredClaims
}
