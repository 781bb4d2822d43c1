package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenClaims is the JWT payload carried by admin sessions.
type AccessTokenClaims struct {
	AdminID uuid.UUID `json:"admin_id"`
	Email   string    `json:"email"`
	jwt.RegisteredClaims
}

// AccessTokenPayload carries the inputs to mint an access token.
type AccessTokenPayload struct {
	AdminID uuid.UUID
	Email   string
	JTI     string
}
