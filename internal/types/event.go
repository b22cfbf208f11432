package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event is a user-created recording session. It owns audio chunks and photos.
type Event struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_event_user" json:"user_id"`

	Title     string     `gorm:"column:title" json:"title"`
	StartedAt time.Time  `gorm:"column:started_at;not null;index:idx_event_started" json:"started_at"`
	EndedAt   *time.Time `gorm:"column:ended_at" json:"ended_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Event) TableName() string { return "event" }

type EventPhoto struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	EventID uuid.UUID `gorm:"type:uuid;not null;index:idx_event_photo_event" json:"event_id"`
	Event   *Event    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_event_photo_user" json:"user_id"`

	PhotoURL      string  `gorm:"column:photo_url;not null" json:"photo_url"`
	OffsetSeconds float64 `gorm:"column:offset_seconds;not null;default:0" json:"offset_seconds"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (EventPhoto) TableName() string { return "event_photo" }
