package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

// ProfileUpdate is a shallow partial update; nil fields are left alone.
type ProfileUpdate struct {
	Categories           *[]types.QuestCategory
	Difficulty           *types.QuestDifficulty
	MaxTime              *int
	AdditionalNotes      *string
	NotificationsEnabled *bool
	NotificationTime     *string
	Timezone             *string
}

type UserProfileService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.UserProfile, error)
	MarkOnboardingCompleted(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	Reset(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error)
	// LocalNow is the current wall clock in the profile's timezone; an
	// unknown zone falls back to UTC with a logged warning.
	LocalNow(ctx context.Context, userID uuid.UUID) time.Time
}

type userProfileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.UserProfileRepo
}

func NewUserProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.UserProfileRepo) UserProfileService {
	serviceLog := log.With("service", "UserProfileService")
	return &userProfileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func defaultProfile(userID uuid.UUID) *types.UserProfile {
	return &types.UserProfile{
		ID:         uuid.New(),
		UserID:     userID,
		Categories: types.MarshalCategories(nil),
		Difficulty: types.DifficultyMedium,
		MaxTime:    types.DefaultMaxTime,
		Timezone:   types.DefaultTimezone,
	}
}

func (s *userProfileService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	existing, err := s.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load profile: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	profile := defaultProfile(userID)
	if _, err := s.profileRepo.Create(ctx, nil, []*types.UserProfile{profile}); err != nil {
		// lost a creation race; the winner's row is the profile
		raced, rErr := s.profileRepo.GetByUserID(ctx, nil, userID)
		if rErr == nil && raced != nil {
			return raced, nil
		}
		return nil, fmt.Errorf("Failed to create profile: %w", err)
	}
	return profile, nil
}

func (s *userProfileService) Update(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (*types.UserProfile, error) {
	if err := validateProfileUpdate(update); err != nil {
		return nil, err
	}

	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Categories != nil {
		profile.Categories = types.MarshalCategories(*update.Categories)
	}
	if update.Difficulty != nil {
		profile.Difficulty = *update.Difficulty
	}
	if update.MaxTime != nil {
		profile.MaxTime = *update.MaxTime
	}
	if update.AdditionalNotes != nil {
		profile.AdditionalNotes = *update.AdditionalNotes
	}
	if update.NotificationsEnabled != nil {
		profile.NotificationsEnabled = *update.NotificationsEnabled
	}
	if update.NotificationTime != nil {
		profile.NotificationTime = *update.NotificationTime
	}
	if update.Timezone != nil {
		profile.Timezone = *update.Timezone
	}
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profileRepo.Save(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("Failed to save profile: %w", err)
	}
	return profile, nil
}

func validateProfileUpdate(update ProfileUpdate) error {
	if update.Categories != nil {
		for _, c := range *update.Categories {
			if !c.Valid() {
				return fmt.Errorf("%w: unknown category %q", ErrValidation, c)
			}
		}
	}
	if update.Difficulty != nil && !update.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrValidation, *update.Difficulty)
	}
	if update.MaxTime != nil && *update.MaxTime <= 0 {
		return fmt.Errorf("%w: max_time must be positive", ErrValidation)
	}
	if update.NotificationTime != nil && *update.NotificationTime != "" {
		if _, err := time.Parse("15:04", *update.NotificationTime); err != nil {
			return fmt.Errorf("%w: notification_time must be HH:MM", ErrValidation)
		}
	}
	if update.Timezone != nil {
		tz := strings.TrimSpace(*update.Timezone)
		if tz == "" {
			return fmt.Errorf("%w: timezone must not be empty", ErrValidation)
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return fmt.Errorf("%w: unknown timezone %q", ErrValidation, tz)
		}
	}
	return nil
}

func (s *userProfileService) MarkOnboardingCompleted(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile.OnboardingCompleted {
		return profile, nil
	}
	profile.OnboardingCompleted = true
	profile.UpdatedAt = time.Now().UTC()
	if err := s.profileRepo.Save(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("Failed to mark onboarding completed: %w", err)
	}
	return profile, nil
}

func (s *userProfileService) Reset(ctx context.Context, userID uuid.UUID) (*types.UserProfile, error) {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	defaults := defaultProfile(userID)
	profile.Categories = defaults.Categories
	profile.Difficulty = defaults.Difficulty
	profile.MaxTime = defaults.MaxTime
	profile.AdditionalNotes = ""
	profile.NotificationsEnabled = false
	profile.NotificationTime = ""
	profile.Timezone = defaults.Timezone
	profile.OnboardingCompleted = false
	profile.UpdatedAt = time.Now().UTC()

	if err := s.profileRepo.Save(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("Failed to reset profile: %w", err)
	}
	return profile, nil
}

func (s *userProfileService) LocalNow(ctx context.Context, userID uuid.UUID) time.Time {
	profile, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		s.log.Warn("Profile lookup failed for local time, using UTC", "user_id", userID, "error", err)
		return time.Now().UTC()
	}
	loc, err := time.LoadLocation(profile.Timezone)
	if err != nil {
		s.log.Warn("Unknown timezone on profile, using UTC", "user_id", userID, "timezone", profile.Timezone)
		return time.Now().UTC()
	}
	return time.Now().In(loc)
}
