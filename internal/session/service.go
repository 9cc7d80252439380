// Package session implements the authentication state machine: login,
// refresh-token rotation, and revocation.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/common"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/util"
	"github.com/google/uuid"
)

// ErrUnauthorized is returned for any credential or token failure. Unknown
// username, wrong password, and invalid tokens are deliberately
// indistinguishable at this boundary.
var ErrUnauthorized = errors.New("invalid credentials")

// bcrypt hash compared against when the username does not exist, so the
// two login failure cases take similar time.
const dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// UserSource resolves user records. Implementations return
// common.ErrNotFound for missing users.
type UserSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
}

// TokenStore is the durable refresh-token record. *Store satisfies it.
type TokenStore interface {
	Create(ctx context.Context, userID uuid.UUID, deviceInfo string) (string, error)
	Consume(ctx context.Context, tokenStr string) (*model.RefreshToken, error)
	Revoke(ctx context.Context, tokenStr string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// TokenIssuer mints signed access tokens. *token.Maker satisfies it.
type TokenIssuer interface {
	CreateToken(user *model.User) (string, error)
	CreateTokenForUsername(username string) (string, error)
}

// Tokens is the outcome of a successful login or refresh. The refresh
// token travels to the client in an httpOnly cookie, the access token in
// the response body.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Service struct {
	users UserSource
	store TokenStore
	maker TokenIssuer
}

func NewService(users UserSource, store TokenStore, maker TokenIssuer) *Service {
	return &Service{users: users, store: store, maker: maker}
}

// Login verifies credentials and, on success, issues an access token and a
// fresh refresh token. Both failure causes produce the same outcome.
func (s *Service) Login(ctx context.Context, username, password, deviceInfo string) (*Tokens, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, common.ErrNotFound) {
		_ = util.CheckPasswordHash(password, dummyPasswordHash)
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := util.CheckPasswordHash(password, user.PasswordHash); err != nil {
		return nil, ErrUnauthorized
	}

	accessToken, err := s.maker.CreateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	refreshToken, err := s.store.Create(ctx, user.ID, deviceInfo)
	if err != nil {
		return nil, fmt.Errorf("issuing refresh token: %w", err)
	}

	slog.Info("User logged in", "username", username)
	return &Tokens{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// Refresh rotates a refresh token: the presented token is atomically
// consumed, then a new access token and a new refresh token are issued.
// When two callers race on the same token, only the first wins.
func (s *Service) Refresh(ctx context.Context, refreshToken, deviceInfo string) (*Tokens, error) {
	rt, err := s.store.Consume(ctx, refreshToken)
	if errors.Is(err, ErrTokenInvalid) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("consuming refresh token: %w", err)
	}

	user, err := s.users.GetByID(ctx, rt.UserID)
	if errors.Is(err, common.ErrNotFound) {
		// token outlived its user; nothing to rotate to
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, fmt.Errorf("looking up token owner: %w", err)
	}

	accessToken, err := s.maker.CreateToken(user)
	if err != nil {
		return nil, fmt.Errorf("issuing access token: %w", err)
	}

	newRefreshToken, err := s.store.Create(ctx, user.ID, deviceInfo)
	if err != nil {
		return nil, fmt.Errorf("issuing rotated refresh token: %w", err)
	}

	slog.Info("Refresh token rotated", "username", user.Username)
	return &Tokens{AccessToken: accessToken, RefreshToken: newRefreshToken}, nil
}

// Revoke is single-session logout. It always succeeds from the caller's
// perspective, even for absent or already-revoked tokens.
func (s *Service) Revoke(ctx context.Context, refreshToken string) error {
	if err := s.store.Revoke(ctx, refreshToken); err != nil {
		slog.Warn("Failed to revoke refresh token", "error", err)
	}
	return nil
}

// RevokeAll is logout-everywhere for a user already authenticated by an
// access token.
func (s *Service) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	if err := s.store.RevokeAll(ctx, userID); err != nil {
		return fmt.Errorf("revoking user sessions: %w", err)
	}
	slog.Info("All sessions revoked", "userId", userID)
	return nil
}

// AccessTokenForUsername is the legacy token endpoint path: the username is
// resolved to a user row, then a token carrying the username and a unique
// token ID is issued. A missing user surfaces common.ErrNotFound.
func (s *Service) AccessTokenForUsername(ctx context.Context, username string) (string, error) {
	if _, err := s.users.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("looking up user: %w", err)
	}
	return s.maker.CreateTokenForUsername(username)
}
