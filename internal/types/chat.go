package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChatMessage records one question/answer exchange with its cited sources.
type ChatMessage struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_chat_message_user" json:"user_id"`

	Query  string `gorm:"column:query;type:text;not null" json:"query"`
	Answer string `gorm:"column:answer;type:text" json:"answer"`

	// []SourceRef
	Sources datatypes.JSON `gorm:"column:sources;type:jsonb" json:"sources"`
	// []string of related concept names
	RelatedConcepts datatypes.JSON `gorm:"column:related_concepts;type:jsonb" json:"related_concepts"`

	CreatedAt time.Time `gorm:"not null;default:now();index:idx_chat_message_created" json:"created_at"`
}

func (ChatMessage) TableName() string { return "chat_message" }
