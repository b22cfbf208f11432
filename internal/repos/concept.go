package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

type ConceptRepo interface {
	// UpsertByName creates the concept on first mention or returns the
	// existing row for (user, name).
	UpsertByName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error)
	FindByNameLike(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Concept, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error)
	Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, id uuid.UUID) error
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) UpsertByName(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	concept := types.Concept{UserID: userID, Name: name}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name"}},
			DoNothing: true,
		}).
		Create(&concept).Error; err != nil {
		return nil, err
	}
	if concept.ID != uuid.Nil {
		return &concept, nil
	}
	// Conflict path: row already existed, fetch it.
	var existing types.Concept
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND name = ?", userID, name).
		First(&existing).Error; err != nil {
		return nil, err
	}
	return &existing, nil
}

func (r *conceptRepo) FindByNameLike(ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string) (*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.Concept
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND name ILIKE ?", userID, "%"+name+"%").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *conceptRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Concept
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conceptRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.Concept, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.Concept
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *conceptRepo) Delete(ctx context.Context, tx *gorm.DB, userID uuid.UUID, id uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Where("user_id = ? AND id = ?", userID, id).
		Delete(&types.Concept{}).Error
}
