// api/models/auth_models.go
package models

import "github.com/golang-jwt/jwt/v5"

// --- JWT Claims ---

// CustomClaims includes standard claims and the operator the token was minted for
type CustomClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}
