package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type GenerationLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, logs []*types.QuestGenerationLog) ([]*types.QuestGenerationLog, error)
	CountByUser(ctx context.Context, tx *gorm.DB, userID *uuid.UUID) (int64, error)
}

type generationLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGenerationLogRepo(db *gorm.DB, baseLog *logger.Logger) GenerationLogRepo {
	repoLog := baseLog.With("repo", "GenerationLogRepo")
	return &generationLogRepo{db: db, log: repoLog}
}

func (r *generationLogRepo) Create(ctx context.Context, tx *gorm.DB, logs []*types.QuestGenerationLog) ([]*types.QuestGenerationLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(logs) == 0 {
		return []*types.QuestGenerationLog{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *generationLogRepo) CountByUser(ctx context.Context, tx *gorm.DB, userID *uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).Model(&types.QuestGenerationLog{})
	if userID == nil {
		q = q.Where("user_id IS NULL")
	} else {
		q = q.Where("user_id = ?", *userID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
