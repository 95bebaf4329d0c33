package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type UserProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.UserProfile) ([]*types.UserProfile, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error)
	Save(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) error
}

type userProfileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserProfileRepo(db *gorm.DB, baseLog *logger.Logger) UserProfileRepo {
	repoLog := baseLog.With("repo", "UserProfileRepo")
	return &userProfileRepo{db: db, log: repoLog}
}

func (r *userProfileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.UserProfile) ([]*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if len(profiles) == 0 {
		return []*types.UserProfile{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *userProfileRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.UserProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *userProfileRepo) Save(ctx context.Context, tx *gorm.DB, profile *types.UserProfile) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	return transaction.WithContext(ctx).Save(profile).Error
}
