package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RefreshToken is a server-side session credential. Rows are soft-deleted
// via IsRevoked only; physical deletion happens in the expiry sweeper.
type RefreshToken struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Token      string    `gorm:"type:varchar(500);uniqueIndex;not null" json:"-"`
	ExpiresAt  time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt  time.Time `json:"createdAt"`
	IsRevoked  bool      `gorm:"not null;default:false" json:"isRevoked"`
	DeviceInfo string    `gorm:"type:varchar(200)" json:"deviceInfo,omitempty"`
}

func (rt *RefreshToken) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}
