package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type QuestBoardRepo interface {
	Create(ctx context.Context, tx *gorm.DB, boards []*types.QuestBoard) ([]*types.QuestBoard, error)
	GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestBoard, error)
	// GetActiveByUserIDForUpdate takes a row lock on the active board so
	// concurrent refreshes for the same user serialize.
	GetActiveByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestBoard, error)
	Save(ctx context.Context, tx *gorm.DB, board *types.QuestBoard) error
	DeactivateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error
}

type questBoardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestBoardRepo(db *gorm.DB, baseLog *logger.Logger) QuestBoardRepo {
	repoLog := baseLog.With("repo", "QuestBoardRepo")
	return &questBoardRepo{db: db, log: repoLog}
}

func (r *questBoardRepo) Create(ctx context.Context, tx *gorm.DB, boards []*types.QuestBoard) ([]*types.QuestBoard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(boards) == 0 {
		return []*types.QuestBoard{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

func (r *questBoardRepo) GetActiveByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestBoard, error) {
	return r.getActive(ctx, tx, userID, false)
}

func (r *questBoardRepo) GetActiveByUserIDForUpdate(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.QuestBoard, error) {
	return r.getActive(ctx, tx, userID, true)
}

func (r *questBoardRepo) getActive(ctx context.Context, tx *gorm.DB, userID uuid.UUID, lock bool) (*types.QuestBoard, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Where("user_id = ? AND is_active = ?", userID, true)
	// sqlite (tests) has no row locks; its writes serialize anyway
	if lock && transaction.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var results []*types.QuestBoard
	if err := q.Limit(1).Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *questBoardRepo) Save(ctx context.Context, tx *gorm.DB, board *types.QuestBoard) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(board).Error
}

func (r *questBoardRepo) DeactivateByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).
		Model(&types.QuestBoard{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Update("is_active", false).Error
}
