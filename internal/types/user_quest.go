package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserQuest is one template instance offered to one user. QuestBoardID is
// cleared when the quest is detached from its board; the row survives for
// analytics.
type UserQuest struct {
	gorm.Model
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	QuestBoardID    *uuid.UUID      `gorm:"type:uuid;index;column:quest_board_id" json:"quest_board_id,omitempty"`
	QuestTemplateID uuid.UUID       `gorm:"type:uuid;not null;index;column:quest_template_id" json:"quest_template_id"`
	ResolvedText    *string         `gorm:"column:resolved_text" json:"resolved_text,omitempty"`
	Status          QuestStatus     `gorm:"column:status;not null;default:'potential';index" json:"status"`
	AcceptedAt      *time.Time      `gorm:"column:accepted_at" json:"accepted_at,omitempty"`
	CompletedAt     *time.Time      `gorm:"column:completed_at" json:"completed_at,omitempty"`
	FailedAt        *time.Time      `gorm:"column:failed_at" json:"failed_at,omitempty"`
	AbandonedAt     *time.Time      `gorm:"column:abandoned_at" json:"abandoned_at,omitempty"`
	DeclinedAt      *time.Time      `gorm:"column:declined_at" json:"declined_at,omitempty"`
	FeedbackRating  *FeedbackRating `gorm:"column:feedback_rating" json:"feedback_rating,omitempty"`
	FeedbackComment *string         `gorm:"column:feedback_comment" json:"feedback_comment,omitempty"`
	TimeSpent       *int            `gorm:"column:time_spent" json:"time_spent,omitempty"`
	CreatedAt       time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null" json:"updated_at"`

	Template *QuestTemplate `gorm:"foreignKey:QuestTemplateID" json:"template,omitempty"`
}

func (UserQuest) TableName() string {
	return "user_quest"
}

// DisplayText is the canonical text shown to the user: the resolved
// override when set, else the template's text.
func (q *UserQuest) DisplayText() string {
	if q.ResolvedText != nil && *q.ResolvedText != "" {
		return *q.ResolvedText
	}
	if q.Template != nil {
		return q.Template.Text
	}
	return ""
}
