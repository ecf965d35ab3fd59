package models

import "time"

// TokenClaims describes an operator token accepted by the HTTP API.
type TokenClaims struct {
	ID        string    `json:"jti"`
	Subject   string    `json:"sub"`
	ExpiresAt time.Time `json:"exp"`
	IssuedAt  time.Time `json:"iat"`
}
