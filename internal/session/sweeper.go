package session

import (
	"context"
	"log/slog"
	"time"
)

// ExpiredDeleter is the slice of the store the sweeper needs.
type ExpiredDeleter interface {
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Sweeper periodically deletes refresh-token rows whose expiry is older
// than the retention window. It runs outside the request path; expiry
// itself is always enforced by timestamp comparison at validation time.
type Sweeper struct {
	store     ExpiredDeleter
	interval  time.Duration
	retention time.Duration
}

func NewSweeper(store ExpiredDeleter, interval, retention time.Duration) *Sweeper {
	return &Sweeper{store: store, interval: interval, retention: retention}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().UTC().Add(-s.retention)
			deleted, err := s.store.DeleteExpiredBefore(ctx, cutoff)
			if err != nil {
				slog.Error("Refresh token sweep failed", "error", err)
				continue
			}
			if deleted > 0 {
				slog.Info("Swept expired refresh tokens", "deleted", deleted)
			}
		case <-ctx.Done():
			return
		}
	}
}
