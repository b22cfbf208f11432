package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AudioChunk is a contiguous span of transcribed audio belonging to one event.
type AudioChunk struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	EventID uuid.UUID `gorm:"type:uuid;not null;index:idx_audio_chunk_event" json:"event_id"`
	Event   *Event    `gorm:"constraint:OnDelete:CASCADE;foreignKey:EventID;references:ID" json:"event,omitempty"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_audio_chunk_user" json:"user_id"`

	StartTime float64 `gorm:"column:start_time;not null;default:0" json:"start_time"`
	Length    float64 `gorm:"column:length;not null;default:0" json:"length"`

	AudioURL   string `gorm:"column:audio_url" json:"audio_url"`
	Transcript string `gorm:"column:transcript;type:text" json:"transcript"`
	Summary    string `gorm:"column:summary;type:text" json:"summary"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AudioChunk) TableName() string { return "audio_chunk" }
