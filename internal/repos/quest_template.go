package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type QuestTemplateRepo interface {
	Create(ctx context.Context, tx *gorm.DB, templates []*types.QuestTemplate) ([]*types.QuestTemplate, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, templateIDs []uuid.UUID) ([]*types.QuestTemplate, error)
	// GetCommunityUnvoted returns owner-less templates the given user has not
	// voted on yet, oldest first.
	GetCommunityUnvoted(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error)
	// GetLikedByUser returns templates the user has thumbs-up voted, newest
	// vote first. Used to seed generation exemplars.
	GetLikedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error)
}

type questTemplateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestTemplateRepo(db *gorm.DB, baseLog *logger.Logger) QuestTemplateRepo {
	repoLog := baseLog.With("repo", "QuestTemplateRepo")
	return &questTemplateRepo{db: db, log: repoLog}
}

func (r *questTemplateRepo) Create(ctx context.Context, tx *gorm.DB, templates []*types.QuestTemplate) ([]*types.QuestTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(templates) == 0 {
		return []*types.QuestTemplate{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

func (r *questTemplateRepo) GetByIDs(ctx context.Context, tx *gorm.DB, templateIDs []uuid.UUID) ([]*types.QuestTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestTemplate
	if len(templateIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", templateIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questTemplateRepo) GetCommunityUnvoted(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestTemplate
	q := transaction.WithContext(ctx).
		Where("owner_user_id IS NULL").
		Where("id NOT IN (?)", transaction.
			Model(&types.QuestTemplateVote{}).
			Select("quest_template_id").
			Where("user_id = ?", userID)).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *questTemplateRepo) GetLikedByUser(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestTemplate
	q := transaction.WithContext(ctx).
		Joins(`JOIN "quest_template_vote" v ON v.quest_template_id = "quest_template".id`).
		Where("v.user_id = ? AND v.vote = ?", userID, types.RatingThumbsUp).
		Order("v.updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
