package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestTemplate is reusable quest content. OwnerUserID is null for
// community/voting-pool templates.
type QuestTemplate struct {
	gorm.Model
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Text             string          `gorm:"column:text;not null" json:"text"`
	Category         QuestCategory   `gorm:"column:category;not null;index" json:"category"`
	Difficulty       QuestDifficulty `gorm:"column:difficulty;not null" json:"difficulty"`
	EstimatedTime    string          `gorm:"column:estimated_time" json:"estimated_time"`
	Tags             datatypes.JSON  `gorm:"type:jsonb;column:tags" json:"tags"`
	OwnerUserID      *uuid.UUID      `gorm:"type:uuid;index;column:owner_user_id" json:"owner_user_id,omitempty"`
	ParentTemplateID *uuid.UUID      `gorm:"type:uuid;column:parent_template_id" json:"parent_template_id,omitempty"`
	ModelUsed        *string         `gorm:"column:model_used" json:"model_used,omitempty"`
	FallbackUsed     bool            `gorm:"column:fallback_used;not null;default:false" json:"fallback_used"`
	CreatedAt        time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"not null" json:"updated_at"`
}

func (QuestTemplate) TableName() string {
	return "quest_template"
}
