package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppleSub   *string   `gorm:"uniqueIndex;column:apple_sub" json:"apple_sub,omitempty"`
	DeviceUUID *string   `gorm:"uniqueIndex;column:device_uuid" json:"device_uuid,omitempty"`
	Email      *string   `gorm:"column:email" json:"email,omitempty"`
	FullName   string    `gorm:"column:full_name" json:"full_name"`
	IsAdmin    bool      `gorm:"column:is_admin;not null;default:false" json:"is_admin"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}
