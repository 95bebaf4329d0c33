package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QuestTemplateVote holds one user's vote on one community template.
// Re-voting overwrites the row (unique on user_id + quest_template_id).
type QuestTemplateVote struct {
	gorm.Model
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_vote_user_template;column:user_id" json:"user_id"`
	QuestTemplateID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_vote_user_template;column:quest_template_id" json:"quest_template_id"`
	Vote            FeedbackRating `gorm:"column:vote;not null" json:"vote"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuestTemplateVote) TableName() string {
	return "quest_template_vote"
}
