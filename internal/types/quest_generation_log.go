package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// QuestGenerationLog records one generator invocation, LLM-backed or
// fallback. UserID is null for voting-pool generations.
type QuestGenerationLog struct {
	gorm.Model
	ID                 uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             *uuid.UUID     `gorm:"type:uuid;index;column:user_id" json:"user_id,omitempty"`
	RequestPreferences datatypes.JSON `gorm:"type:jsonb;column:request_preferences" json:"request_preferences"`
	ContextData        datatypes.JSON `gorm:"type:jsonb;column:context_data" json:"context_data"`
	QuestsGenerated    datatypes.JSON `gorm:"type:jsonb;column:quests_generated" json:"quests_generated"`
	ModelUsed          *string        `gorm:"column:model_used" json:"model_used,omitempty"`
	FallbackUsed       bool           `gorm:"column:fallback_used;not null;default:false" json:"fallback_used"`
	GenerationTimeMs   int64          `gorm:"column:generation_time_ms" json:"generation_time_ms"`
	TokensUsed         int            `gorm:"column:tokens_used" json:"tokens_used"`
	CreatedAt          time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuestGenerationLog) TableName() string {
	return "quest_generation_log"
}
