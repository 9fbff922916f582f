package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenCodec signs and verifies access tokens. The signing algorithm is
// chosen by name so deployments can rotate between HMAC variants without a
// code change.
type TokenCodec struct {
	secret []byte
	method jwt.SigningMethod
}

// NewTokenCodec builds a codec for the named HMAC algorithm (HS256, HS384,
// HS512).
func NewTokenCodec(secret, algorithm string) (*TokenCodec, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret required")
	}
	method := jwt.GetSigningMethod(strings.ToUpper(strings.TrimSpace(algorithm)))
	if method == nil {
		return nil, fmt.Errorf("unknown signing algorithm %q", algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("signing algorithm %q is not an HMAC method", algorithm)
	}
	return &TokenCodec{secret: []byte(secret), method: method}, nil
}

// Encode signs a token embedding the user ID and expiry. Every token carries
// a unique jti, so re-issuing for the same user and expiry still produces a
// distinct token.
func (c *TokenCodec) Encode(userID string, expiresAt time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(expiresAt.UTC()),
		IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
	}
	return jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
}

// Decode verifies the signature and expiry and returns the embedded user ID.
func (c *TokenCodec) Decode(token string) (string, error) {
	claims := jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{c.method.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	if !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return "", errors.New("invalid token")
	}
	return claims.Subject, nil
}
