package security

import (
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type FaceclockIdentity struct {
	EmployeeID uint
	Code       string
	Email      string
	Staff      bool
}

type Identity struct {
	EmployeeID uint   `json:"nameid"`
	Code       string `json:"unique_name"`
	Email      string `json:"email"`
	Staff      bool   `json:"staff"`
}

type IdentityClaims struct {
	Identity
	jwt.RegisteredClaims
}

// CreateIdentityToken signs a token a terminal presents on every
// request. Staff tokens may mark attendance for anyone; non-staff
// tokens only for their own employee.
func CreateIdentityToken(identity *FaceclockIdentity, base64Secret string, expiresInSeconds int64) (string, error) {
	secretBytes, err := base64.StdEncoding.DecodeString(base64Secret)
	if err != nil {
		return "", err
	}
	claims := IdentityClaims{
		Identity: Identity{
			EmployeeID: identity.EmployeeID,
			Code:       identity.Code,
			Email:      identity.Email,
			Staff:      identity.Staff,
		},
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "faceclock",
			Audience:  []string{"faceclock"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiresInSeconds) * time.Second)),
		},
	}

	// HS256 signing method (symmetric key)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretBytes))
}
