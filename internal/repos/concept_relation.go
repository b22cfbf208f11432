package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

type ConceptRelationRepo interface {
	GetBySrcIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, srcIDs []uuid.UUID, limit int) ([]*types.ConceptRelation, error)
}

type conceptRelationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRelationRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRelationRepo {
	return &conceptRelationRepo{db: db, log: baseLog.With("repo", "ConceptRelationRepo")}
}

func (r *conceptRelationRepo) GetBySrcIDs(ctx context.Context, tx *gorm.DB, userID uuid.UUID, srcIDs []uuid.UUID, limit int) ([]*types.ConceptRelation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ConceptRelation
	if len(srcIDs) == 0 {
		return results, nil
	}
	q := transaction.WithContext(ctx).
		Where("user_id = ? AND src IN ?", userID, srcIDs).
		Order("score DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
