package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TrackingLog is a single logged health event.
// LeakAmount, Urgency and PainLevel are 1-5 scales.
type TrackingLog struct {
	ID                   uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	EventDate            time.Time `gorm:"not null;index" json:"eventDate"`
	Accident             bool      `gorm:"not null;default:false" json:"accident"`
	ChangePadOrUnderwear bool      `gorm:"not null;default:false" json:"changePadOrUnderwear"`
	LeakAmount           int       `gorm:"not null;default:1" json:"leakAmount"`
	Urgency              int       `gorm:"not null;default:1" json:"urgency"`
	AwokeFromSleep       bool      `gorm:"not null;default:false" json:"awokeFromSleep"`
	PainLevel            int       `gorm:"not null;default:1" json:"painLevel"`
	Notes                string    `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt            time.Time `json:"-"`
}

func (t *TrackingLog) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.EventDate.IsZero() {
		t.EventDate = time.Now().UTC()
	}
	return nil
}
