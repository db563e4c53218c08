package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMalformedToken is returned when the token cannot be parsed or is not ours.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature is returned when the token signature does not match.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = errors.New("token has expired")
)

// TokenConfig holds identity token configuration.
type TokenConfig struct {
	SecretKey string
	Lifetime  time.Duration
	Issuer    string
}

// tokenClaims is the JWT body. Subject carries the user ID; UserID mirrors it
// for clients that read the claims directly.
type tokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies HS256 identity tokens. It holds no state
// beyond its configuration and is safe for concurrent use.
type TokenCodec struct {
	config TokenConfig
	now    func() time.Time
}

// NewTokenCodec creates a new TokenCodec with the given configuration.
func NewTokenCodec(config TokenConfig) *TokenCodec {
	return &TokenCodec{
		config: config,
		now:    time.Now,
	}
}

// Issue signs a token for userID that expires after the configured lifetime.
func (c *TokenCodec) Issue(userID string) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("cannot issue token: empty user id")
	}

	now := c.now()
	claims := tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.config.Issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(c.config.Lifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.config.SecretKey))
}

// Verify checks the token and returns the user ID it was issued for.
func (c *TokenCodec) Verify(tokenString string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	}
	if c.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", token.Method.Alg())
		}
		return []byte(c.config.SecretKey), nil
	}, opts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", ErrMalformedToken
		}
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrMalformedToken
	}

	return claims.Subject, nil
}

// ExpiresIn returns the token lifetime in seconds.
func (c *TokenCodec) ExpiresIn() int64 {
	return int64(c.config.Lifetime.Seconds())
}
