package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type QuestBoard struct {
	gorm.Model
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;index;column:user_id" json:"user_id"`
	LastRefreshed time.Time `gorm:"column:last_refreshed" json:"last_refreshed"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (QuestBoard) TableName() string {
	return "quest_board"
}
