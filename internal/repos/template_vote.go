package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type VoteCounts struct {
	ThumbsUp   int64
	ThumbsDown int64
}

type TemplateVoteRepo interface {
	// Upsert writes the (user, template) vote; re-voting overwrites.
	Upsert(ctx context.Context, tx *gorm.DB, vote *types.QuestTemplateVote) (*types.QuestTemplateVote, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplateVote, error)
	CountByTemplate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID) (*VoteCounts, error)
}

type templateVoteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTemplateVoteRepo(db *gorm.DB, baseLog *logger.Logger) TemplateVoteRepo {
	repoLog := baseLog.With("repo", "TemplateVoteRepo")
	return &templateVoteRepo{db: db, log: repoLog}
}

func (r *templateVoteRepo) Upsert(ctx context.Context, tx *gorm.DB, vote *types.QuestTemplateVote) (*types.QuestTemplateVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	vote.UpdatedAt = time.Now().UTC()
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "quest_template_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"vote", "updated_at"}),
		}).
		Create(vote).Error; err != nil {
		return nil, err
	}

	// re-read so the caller sees the surviving row on the conflict path
	var results []*types.QuestTemplateVote
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND quest_template_id = ?", vote.UserID, vote.QuestTemplateID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return vote, nil
	}
	return results[0], nil
}

func (r *templateVoteRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, limit int) ([]*types.QuestTemplateVote, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.QuestTemplateVote
	q := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *templateVoteRepo) CountByTemplate(ctx context.Context, tx *gorm.DB, templateID uuid.UUID) (*VoteCounts, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	counts := &VoteCounts{}
	if err := transaction.WithContext(ctx).
		Model(&types.QuestTemplateVote{}).
		Where("quest_template_id = ? AND vote = ?", templateID, types.RatingThumbsUp).
		Count(&counts.ThumbsUp).Error; err != nil {
		return nil, err
	}
	if err := transaction.WithContext(ctx).
		Model(&types.QuestTemplateVote{}).
		Where("quest_template_id = ? AND vote = ?", templateID, types.RatingThumbsDown).
		Count(&counts.ThumbsDown).Error; err != nil {
		return nil, err
	}
	return counts, nil
}
