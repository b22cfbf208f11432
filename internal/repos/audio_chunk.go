package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

type AudioChunkRepo interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AudioChunk, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AudioChunk, error)
	GetByEventIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) ([]*types.AudioChunk, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AudioChunk, error)
	UpdateTranscription(ctx context.Context, tx *gorm.DB, id uuid.UUID, transcript string, summary string) error
}

type audioChunkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAudioChunkRepo(db *gorm.DB, baseLog *logger.Logger) AudioChunkRepo {
	return &audioChunkRepo{db: db, log: baseLog.With("repo", "AudioChunkRepo")}
}

func (r *audioChunkRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.AudioChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var result types.AudioChunk
	if err := transaction.WithContext(ctx).
		Where("id = ?", id).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *audioChunkRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.AudioChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AudioChunk
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

func (r *audioChunkRepo) GetByEventIDs(ctx context.Context, tx *gorm.DB, eventIDs []uuid.UUID) ([]*types.AudioChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.AudioChunk
	if len(eventIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("event_id IN ?", eventIDs).
		Order("event_id, start_time ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *audioChunkRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.AudioChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var results []*types.AudioChunk
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *audioChunkRepo) UpdateTranscription(ctx context.Context, tx *gorm.DB, id uuid.UUID, transcript string, summary string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.AudioChunk{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"transcript": transcript,
			"summary":    summary,
		}).Error
}
