package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

type ChunkConceptRepo interface {
	// Upsert merge-writes the link keyed by (chunk, concept).
	Upsert(ctx context.Context, tx *gorm.DB, link *types.ChunkConcept) error
	GetByConceptID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID uuid.UUID) ([]*types.ChunkConcept, error)
	GetByChunkIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, chunkIDs []uuid.UUID) ([]*types.ChunkConcept, error)
	CountByConceptID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID uuid.UUID) (int64, error)
	DeleteByChunkID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, chunkID uuid.UUID) error
}

type chunkConceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChunkConceptRepo(db *gorm.DB, baseLog *logger.Logger) ChunkConceptRepo {
	return &chunkConceptRepo{db: db, log: baseLog.With("repo", "ChunkConceptRepo")}
}

func (r *chunkConceptRepo) Upsert(ctx context.Context, tx *gorm.DB, link *types.ChunkConcept) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chunk_id"}, {Name: "concept_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"score", "from_sec", "to_sec", "updated_at"}),
		}).
		Create(link).Error
}

func (r *chunkConceptRepo) GetByConceptID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID uuid.UUID) ([]*types.ChunkConcept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ChunkConcept
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Order("score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chunkConceptRepo) GetByChunkIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, chunkIDs []uuid.UUID) ([]*types.ChunkConcept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ChunkConcept
	if len(chunkIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Preload("Concept").
		Where("user_id = ? AND chunk_id IN ?", userID, chunkIDs).
		Order("score DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *chunkConceptRepo) CountByConceptID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, conceptID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.ChunkConcept{}).
		Where("user_id = ? AND concept_id = ?", userID, conceptID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *chunkConceptRepo) DeleteByChunkID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, chunkID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND chunk_id = ?", userID, chunkID).
		Delete(&types.ChunkConcept{}).Error
}
