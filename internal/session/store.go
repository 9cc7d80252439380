package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTokenInvalid covers not-found, expired, revoked and raced-away tokens.
// Callers must not leak which case it was.
var ErrTokenInvalid = errors.New("refresh token is invalid, expired, or revoked")

const (
	tokenBytes        = 32
	maxCreateAttempts = 3
)

// Store is the durable record of issued refresh tokens. Every operation is
// a single atomic read-modify-write against one row; no cross-token
// transaction exists.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration) *Store {
	return &Store{db: db, ttl: ttl, now: time.Now}
}

// Create issues a new refresh token for userID with expiry now+TTL. On the
// off chance the random string collides with an existing row, it
// regenerates and retries.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, deviceInfo string) (string, error) {
	if len(deviceInfo) > 200 {
		deviceInfo = deviceInfo[:200]
	}

	var lastErr error
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		tokenStr, err := generateTokenString()
		if err != nil {
			return "", fmt.Errorf("generating refresh token: %w", err)
		}

		rt := &model.RefreshToken{
			UserID:     userID,
			Token:      tokenStr,
			ExpiresAt:  s.now().UTC().Add(s.ttl),
			IsRevoked:  false,
			DeviceInfo: deviceInfo,
		}
		err = s.db.WithContext(ctx).Create(rt).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			lastErr = err
			continue
		}
		if err != nil {
			return "", fmt.Errorf("storing refresh token: %w", err)
		}
		return tokenStr, nil
	}
	return "", fmt.Errorf("storing refresh token: %w", lastErr)
}

// Validate reports whether tokenStr is an active token belonging to userID.
// Blank or whitespace-only tokens return false without touching storage,
// and storage errors are logged but still report false.
func (s *Store) Validate(ctx context.Context, tokenStr string, userID uuid.UUID) bool {
	if strings.TrimSpace(tokenStr) == "" {
		return false
	}

	var count int64
	err := s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
			tokenStr, userID, false, s.now().UTC()).
		Count(&count).Error
	if err != nil {
		slog.Error("Failed to validate refresh token", "error", err)
		return false
	}
	return count > 0
}

// Revoke marks the matching token revoked. Absent, blank, or
// already-revoked tokens are a no-op, keeping logout idempotent.
func (s *Store) Revoke(ctx context.Context, tokenStr string) error {
	if strings.TrimSpace(tokenStr) == "" {
		return nil
	}

	err := s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ?", tokenStr).
		Update("is_revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}
	return nil
}

// Consume atomically revokes an active, unexpired token and returns its
// row. Only one of any number of concurrent callers presenting the same
// token wins; the rest get ErrTokenInvalid. This is the rotation primitive
// that closes the refresh token-reuse race.
func (s *Store) Consume(ctx context.Context, tokenStr string) (*model.RefreshToken, error) {
	if strings.TrimSpace(tokenStr) == "" {
		return nil, ErrTokenInvalid
	}

	res := s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("token = ? AND is_revoked = ? AND expires_at > ?",
			tokenStr, false, s.now().UTC()).
		Update("is_revoked", true)
	if res.Error != nil {
		return nil, fmt.Errorf("consuming refresh token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrTokenInvalid
	}

	var rt model.RefreshToken
	if err := s.db.WithContext(ctx).First(&rt, "token = ?", tokenStr).Error; err != nil {
		return nil, fmt.Errorf("loading consumed refresh token: %w", err)
	}
	return &rt, nil
}

// RevokeAll marks every token belonging to userID revoked. A user with no
// tokens is a no-op.
func (s *Store) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	err := s.db.WithContext(ctx).
		Model(&model.RefreshToken{}).
		Where("user_id = ?", userID).
		Update("is_revoked", true).Error
	if err != nil {
		return fmt.Errorf("revoking all refresh tokens: %w", err)
	}
	return nil
}

// DeleteExpiredBefore physically removes rows whose expiry is older than
// cutoff. Only the sweeper calls this; request flows never delete rows.
func (s *Store) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&model.RefreshToken{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting expired refresh tokens: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// generateTokenString returns a URL-safe string with 256 bits of entropy.
func generateTokenString() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
