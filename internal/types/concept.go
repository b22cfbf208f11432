package types

import (
	"time"

	"github.com/google/uuid"
)

// Concept is a normalized named topic, unique per (user, name). Created
// lazily on first mention and referenced (never owned) by chunk links.
type Concept struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_user_name,unique" json:"user_id"`
	Name   string    `gorm:"column:name;not null;index:idx_concept_user_name,unique" json:"name"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Concept) TableName() string { return "concept" }

// ChunkConcept links one concept to one chunk with a mention strength.
// One row per (chunk, concept); re-extraction merges on conflict.
type ChunkConcept struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	ChunkID uuid.UUID   `gorm:"type:uuid;not null;index:idx_chunk_concept_pair,unique" json:"chunk_id"`
	Chunk   *AudioChunk `gorm:"constraint:OnDelete:CASCADE;foreignKey:ChunkID;references:ID" json:"chunk,omitempty"`

	ConceptID uuid.UUID `gorm:"type:uuid;not null;index:idx_chunk_concept_pair,unique" json:"concept_id"`
	Concept   *Concept  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ConceptID;references:ID" json:"concept,omitempty"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_chunk_concept_user" json:"user_id"`

	Score   float64  `gorm:"column:score;not null" json:"score"`
	FromSec *float64 `gorm:"column:from_sec" json:"from_sec,omitempty"`
	ToSec   *float64 `gorm:"column:to_sec" json:"to_sec,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (ChunkConcept) TableName() string { return "chunk_concept" }

// ConceptRelation is a directed concept-to-concept edge.
type ConceptRelation struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SrcID uuid.UUID `gorm:"column:src;type:uuid;not null;index:idx_concept_relation_pair,unique" json:"src"`
	DstID uuid.UUID `gorm:"column:dst;type:uuid;not null;index:idx_concept_relation_pair,unique" json:"dst"`

	UserID uuid.UUID `gorm:"type:uuid;not null;index:idx_concept_relation_user" json:"user_id"`

	Score float64 `gorm:"column:score;not null;default:1" json:"score"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ConceptRelation) TableName() string { return "concept_relation" }
