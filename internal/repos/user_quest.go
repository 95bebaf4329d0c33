package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type UserQuestRepo interface {
	Create(ctx context.Context, tx *gorm.DB, quests []*types.UserQuest) ([]*types.UserQuest, error)
	GetByID(ctx context.Context, tx *gorm.DB, questID uuid.UUID) (*types.UserQuest, error)
	GetByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.UserQuest, error)
	Save(ctx context.Context, tx *gorm.DB, quest *types.UserQuest) error
	// GetByUserSince returns the user's quests created at or after the cutoff
	// (zero cutoff means all), template preloaded, newest first. Rows stamped
	// in the future of the server clock are excluded.
	GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.UserQuest, error)
	GetCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserQuest, error)
	// CountByUserAndStatuses counts the user's quests in the given statuses.
	// Rows stamped in the future of the server clock are excluded, same as
	// the history reads feeding the numerators.
	CountByUserAndStatuses(ctx context.Context, tx *gorm.DB, userID uuid.UUID, statuses []types.QuestStatus) (int64, error)
	// GetLikedTexts returns display texts of the user's thumbs-up rated
	// quests, newest first.
	GetLikedTexts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]string, error)
}

type userQuestRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserQuestRepo(db *gorm.DB, baseLog *logger.Logger) UserQuestRepo {
	repoLog := baseLog.With("repo", "UserQuestRepo")
	return &userQuestRepo{db: db, log: repoLog}
}

func (r *userQuestRepo) Create(ctx context.Context, tx *gorm.DB, quests []*types.UserQuest) ([]*types.UserQuest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(quests) == 0 {
		return []*types.UserQuest{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&quests).Error; err != nil {
		return nil, err
	}
	return quests, nil
}

func (r *userQuestRepo) GetByID(ctx context.Context, tx *gorm.DB, questID uuid.UUID) (*types.UserQuest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserQuest
	if err := transaction.WithContext(ctx).
		Preload("Template").
		Where("id = ?", questID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userQuestRepo) GetByBoardID(ctx context.Context, tx *gorm.DB, boardID uuid.UUID) ([]*types.UserQuest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserQuest
	if err := transaction.WithContext(ctx).
		Preload("Template").
		Where("quest_board_id = ?", boardID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestRepo) Save(ctx context.Context, tx *gorm.DB, quest *types.UserQuest) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(quest).Error
}

func (r *userQuestRepo) GetByUserSince(ctx context.Context, tx *gorm.DB, userID uuid.UUID, since time.Time) ([]*types.UserQuest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	q := transaction.WithContext(ctx).
		Preload("Template").
		Where("user_id = ?", userID).
		Where("created_at <= ?", time.Now().UTC())
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}

	var results []*types.UserQuest
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestRepo) GetCompletedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.UserQuest, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserQuest
	if err := transaction.WithContext(ctx).
		Preload("Template").
		Where("user_id = ? AND status = ?", userID, types.StatusCompleted).
		Where("created_at <= ?", time.Now().UTC()).
		Order("completed_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *userQuestRepo) CountByUserAndStatuses(ctx context.Context, tx *gorm.DB, userID uuid.UUID, statuses []types.QuestStatus) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UserQuest{}).
		Where("user_id = ? AND status IN ?", userID, statuses).
		Where("created_at <= ?", time.Now().UTC()).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *userQuestRepo) GetLikedTexts(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var quests []*types.UserQuest
	q := transaction.WithContext(ctx).
		Preload("Template").
		Where("user_id = ? AND feedback_rating = ?", userID, types.RatingThumbsUp).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&quests).Error; err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(quests))
	for _, uq := range quests {
		if t := uq.DisplayText(); t != "" {
			texts = append(texts, t)
		}
	}
	return texts, nil
}
