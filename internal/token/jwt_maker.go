// Package token mints and verifies the short-lived signed access tokens.
// Access tokens are never persisted; validity is purely cryptographic and
// time-based.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrMissingSecret is a configuration error, surfaced at issuance
	// time rather than at startup.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")

	ErrInvalidArgument = errors.New("a user or a username must be provided")
	ErrInvalidToken    = errors.New("token is invalid or expired")
)

type Maker struct {
	secretKey string
	issuer    string
	audience  string
	duration  time.Duration
	now       func() time.Time
}

type Option func(*Maker)

// WithClock substitutes the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Maker) { m.now = now }
}

func NewMaker(secretKey, issuer, audience string, duration time.Duration, opts ...Option) *Maker {
	m := &Maker{
		secretKey: secretKey,
		issuer:    issuer,
		audience:  audience,
		duration:  duration,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateToken signs an access token asserting the given user's identity.
func (maker *Maker) CreateToken(user *model.User) (string, error) {
	if user == nil {
		return "", ErrInvalidArgument
	}
	if maker.secretKey == "" {
		return "", ErrMissingSecret
	}
	claims := newUserClaims(user, maker.issuer, maker.audience, maker.now().UTC(), maker.duration)
	return maker.sign(claims)
}

// CreateTokenForUsername signs an access token for the legacy refresh path,
// carrying the username and a unique token ID. Resolving the username to a
// user row is the caller's job.
func (maker *Maker) CreateTokenForUsername(username string) (string, error) {
	if username == "" {
		return "", ErrInvalidArgument
	}
	if maker.secretKey == "" {
		return "", ErrMissingSecret
	}
	claims := newUsernameClaims(username, maker.issuer, maker.audience, maker.now().UTC(), maker.duration)
	return maker.sign(claims)
}

func (maker *Maker) sign(claims *UserClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenStr, err := token.SignedString([]byte(maker.secretKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return tokenStr, nil
}

// VerifyToken parses and validates a signed access token.
func (maker *Maker) VerifyToken(tokenStr string) (*UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &UserClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(maker.secretKey), nil
	}, jwt.WithTimeFunc(maker.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
