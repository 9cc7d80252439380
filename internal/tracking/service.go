// Package tracking provides the tracking-log service: logging health
// events and querying recent entries and their daily aggregates.
package tracking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/common"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/database/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrInvalidEntry rejects out-of-range scale values before any storage call.
var ErrInvalidEntry = errors.New("leak amount, urgency, and pain level must be between 1 and 5")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// DaySummary aggregates one calendar day of a user's entries.
type DaySummary struct {
	Day        time.Time `json:"day"`
	Events     int       `json:"events"`
	Accidents  int       `json:"accidents"`
	MaxUrgency int       `json:"maxUrgency"`
	MaxPain    int       `json:"maxPain"`
	TotalLeak  int       `json:"totalLeak"`
}

// Create validates and inserts a new log entry. A missing owning user
// surfaces common.ErrNotFound via the foreign-key constraint.
func (s *Service) Create(ctx context.Context, entry *model.TrackingLog) (*model.TrackingLog, error) {
	if !validScale(entry.LeakAmount) || !validScale(entry.Urgency) || !validScale(entry.PainLevel) {
		return nil, ErrInvalidEntry
	}
	if entry.UserID == uuid.Nil {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidEntry)
	}

	err := s.db.WithContext(ctx).Create(entry).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("creating tracking log entry: %w", err)
	}
	return entry, nil
}

// List returns all entries, optionally filtered to one user, newest first.
func (s *Service) List(ctx context.Context, userID *uuid.UUID) ([]model.TrackingLog, error) {
	q := s.db.WithContext(ctx).Order("event_date DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	out := []model.TrackingLog{}
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("listing tracking log entries: %w", err)
	}
	return out, nil
}

// LastNDays returns the user's entries from the trailing numDays window,
// newest first. No rows is an empty slice, not an error.
func (s *Service) LastNDays(ctx context.Context, numDays int, userID uuid.UUID) ([]model.TrackingLog, error) {
	if numDays <= 0 {
		return nil, fmt.Errorf("%w: number of days must be positive", ErrInvalidEntry)
	}
	since := time.Now().UTC().AddDate(0, 0, -numDays)

	out := []model.TrackingLog{}
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND event_date >= ?", userID, since).
		Order("event_date DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("querying tracking log entries: %w", err)
	}
	return out, nil
}

// DailySummary aggregates the trailing numDays window per calendar day.
func (s *Service) DailySummary(ctx context.Context, numDays int, userID uuid.UUID) ([]DaySummary, error) {
	if numDays <= 0 {
		return nil, fmt.Errorf("%w: number of days must be positive", ErrInvalidEntry)
	}
	since := time.Now().UTC().AddDate(0, 0, -numDays)

	out := []DaySummary{}
	err := s.db.WithContext(ctx).
		Model(&model.TrackingLog{}).
		Select(`date_trunc('day', event_date) AS day,
			count(*) AS events,
			count(*) FILTER (WHERE accident) AS accidents,
			max(urgency) AS max_urgency,
			max(pain_level) AS max_pain,
			sum(leak_amount) AS total_leak`).
		Where("user_id = ? AND event_date >= ?", userID, since).
		Group("day").
		Order("day DESC").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("aggregating tracking log entries: %w", err)
	}
	return out, nil
}

func validScale(v int) bool {
	return v >= 1 && v <= 5
}
