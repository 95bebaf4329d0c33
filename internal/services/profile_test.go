package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

func newTestProfileService(t *testing.T) (UserProfileService, *types.User) {
	t.Helper()
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewUserProfileService(db, log, repos.NewUserProfileRepo(db, log))
	return svc, createTestUser(t, db)
}

func TestGetOrCreateProfileDefaults(t *testing.T) {
	svc, user := newTestProfileService(t)

	profile, err := svc.GetOrCreate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, user.ID, profile.UserID)
	require.Equal(t, types.DifficultyMedium, profile.Difficulty)
	require.Equal(t, types.DefaultMaxTime, profile.MaxTime)
	require.Equal(t, types.DefaultTimezone, profile.Timezone)
	require.False(t, profile.OnboardingCompleted)
	require.Empty(t, profile.ParsedCategories())

	again, err := svc.GetOrCreate(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, profile.ID, again.ID, "second touch must reuse the row")
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, user := newTestProfileService(t)

	cats := []types.QuestCategory{types.CategoryFitness, types.CategoryOutdoors}
	maxTime := 45
	tz := "Europe/Berlin"
	updated, err := svc.Update(context.Background(), user.ID, ProfileUpdate{
		Categories: &cats,
		MaxTime:    &maxTime,
		Timezone:   &tz,
	})
	require.NoError(t, err)
	require.Equal(t, cats, updated.ParsedCategories())
	require.Equal(t, 45, updated.MaxTime)
	require.Equal(t, "Europe/Berlin", updated.Timezone)
	// untouched fields keep their defaults
	require.Equal(t, types.DifficultyMedium, updated.Difficulty)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc, user := newTestProfileService(t)

	badCat := []types.QuestCategory{"underwater-basket-weaving"}
	_, err := svc.Update(context.Background(), user.ID, ProfileUpdate{Categories: &badCat})
	require.True(t, errors.Is(err, ErrValidation))

	badDiff := types.QuestDifficulty("impossible")
	_, err = svc.Update(context.Background(), user.ID, ProfileUpdate{Difficulty: &badDiff})
	require.True(t, errors.Is(err, ErrValidation))

	zero := 0
	_, err = svc.Update(context.Background(), user.ID, ProfileUpdate{MaxTime: &zero})
	require.True(t, errors.Is(err, ErrValidation))

	badTime := "25:99"
	_, err = svc.Update(context.Background(), user.ID, ProfileUpdate{NotificationTime: &badTime})
	require.True(t, errors.Is(err, ErrValidation))

	badZone := "Mars/Olympus_Mons"
	_, err = svc.Update(context.Background(), user.ID, ProfileUpdate{Timezone: &badZone})
	require.True(t, errors.Is(err, ErrValidation))
}

func TestMarkOnboardingCompletedIdempotent(t *testing.T) {
	svc, user := newTestProfileService(t)

	first, err := svc.MarkOnboardingCompleted(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, first.OnboardingCompleted)

	second, err := svc.MarkOnboardingCompleted(context.Background(), user.ID)
	require.NoError(t, err)
	require.True(t, second.OnboardingCompleted)
	require.Equal(t, first.ID, second.ID)
}

func TestResetProfileRestoresDefaults(t *testing.T) {
	svc, user := newTestProfileService(t)

	cats := []types.QuestCategory{types.CategoryLearning}
	hard := types.DifficultyHard
	notes := "prefers mornings"
	tz := "Asia/Tokyo"
	_, err := svc.Update(context.Background(), user.ID, ProfileUpdate{
		Categories:      &cats,
		Difficulty:      &hard,
		AdditionalNotes: &notes,
		Timezone:        &tz,
	})
	require.NoError(t, err)
	_, err = svc.MarkOnboardingCompleted(context.Background(), user.ID)
	require.NoError(t, err)

	reset, err := svc.Reset(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, types.DifficultyMedium, reset.Difficulty)
	require.Equal(t, types.DefaultMaxTime, reset.MaxTime)
	require.Equal(t, types.DefaultTimezone, reset.Timezone)
	require.Empty(t, reset.AdditionalNotes)
	require.Empty(t, reset.ParsedCategories())
	require.False(t, reset.OnboardingCompleted)
}

func TestLocalNowUsesProfileTimezone(t *testing.T) {
	svc, user := newTestProfileService(t)

	tz := "America/Los_Angeles"
	_, err := svc.Update(context.Background(), user.ID, ProfileUpdate{Timezone: &tz})
	require.NoError(t, err)

	localNow := svc.LocalNow(context.Background(), user.ID)
	require.Equal(t, "America/Los_Angeles", localNow.Location().String())
	require.WithinDuration(t, time.Now(), localNow, 5*time.Second)
}

func TestLocalNowFallsBackToUTC(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewUserProfileService(db, log, repos.NewUserProfileRepo(db, log))
	user := createTestUser(t, db)

	// corrupt the stored zone directly; validation blocks the normal path
	profile, err := svc.GetOrCreate(context.Background(), user.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&types.UserProfile{}).
		Where("id = ?", profile.ID).
		Update("timezone", "Not/A_Zone").Error)

	localNow := svc.LocalNow(context.Background(), user.ID)
	require.Equal(t, "UTC", localNow.Location().String())
}
