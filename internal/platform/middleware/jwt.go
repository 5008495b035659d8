package middleware

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"trellis/pkg/domain"
)

// JWTValidator validates HMAC-signed tokens and maps the subject claim onto
// the caller's ledger address.
type JWTValidator struct {
	key []byte
}

var _ CallerValidator = (*JWTValidator)(nil)

func NewJWTValidator(signingKey string) *JWTValidator {
	return &JWTValidator{key: []byte(signingKey)}
}

func (v *JWTValidator) ValidateToken(tokenString string) (domain.Address, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return v.key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return domain.Zero, fmt.Errorf("parse token: %w", err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return domain.Zero, fmt.Errorf("read subject claim: %w", err)
	}
	return domain.ParseAddress(subject)
}

// SignCaller issues a token for the given address. Used by operational
// tooling and tests; production callers bring tokens from the platform's
// identity provider.
func SignCaller(signingKey string, caller domain.Address) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": caller.String(),
	})
	return token.SignedString([]byte(signingKey))
}
