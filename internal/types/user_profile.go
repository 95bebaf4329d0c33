package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DefaultMaxTime  = 15
	DefaultTimezone = "UTC"
)

type UserProfile struct {
	gorm.Model
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null;column:user_id" json:"user_id"`
	Categories           datatypes.JSON  `gorm:"type:jsonb;column:categories" json:"categories"`
	Difficulty           QuestDifficulty `gorm:"column:difficulty;not null;default:'medium'" json:"difficulty"`
	MaxTime              int             `gorm:"column:max_time;not null;default:15" json:"max_time"`
	AdditionalNotes      string          `gorm:"column:additional_notes" json:"additional_notes"`
	NotificationsEnabled bool            `gorm:"column:notifications_enabled;not null;default:false" json:"notifications_enabled"`
	NotificationTime     string          `gorm:"column:notification_time" json:"notification_time"`
	Timezone             string          `gorm:"column:timezone;not null;default:'UTC'" json:"timezone"`
	OnboardingCompleted  bool            `gorm:"column:onboarding_completed;not null;default:false" json:"onboarding_completed"`
	CreatedAt            time.Time       `gorm:"not null" json:"created_at"`
	UpdatedAt            time.Time       `gorm:"not null" json:"updated_at"`
}

func (UserProfile) TableName() string {
	return "user_profile"
}

// ParsedCategories decodes the jsonb categories column. An empty or
// unreadable column means "any category".
func (p *UserProfile) ParsedCategories() []QuestCategory {
	if len(p.Categories) == 0 {
		return []QuestCategory{}
	}
	var cats []QuestCategory
	if err := json.Unmarshal(p.Categories, &cats); err != nil {
		return []QuestCategory{}
	}
	return cats
}

func MarshalCategories(cats []QuestCategory) datatypes.JSON {
	if cats == nil {
		cats = []QuestCategory{}
	}
	raw, _ := json.Marshal(cats)
	return datatypes.JSON(raw)
}
