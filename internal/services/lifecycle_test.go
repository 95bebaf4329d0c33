package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

func TestTransitionAllowed(t *testing.T) {
	cases := []struct {
		from types.QuestStatus
		to   types.QuestStatus
		want bool
	}{
		{types.StatusPotential, types.StatusAccepted, true},
		{types.StatusPotential, types.StatusDeclined, true},
		{types.StatusPotential, types.StatusCompleted, false},
		{types.StatusPotential, types.StatusFailed, false},
		{types.StatusAccepted, types.StatusCompleted, true},
		{types.StatusAccepted, types.StatusAbandoned, true},
		{types.StatusAccepted, types.StatusFailed, true},
		{types.StatusAccepted, types.StatusDeclined, false},
		{types.StatusAccepted, types.StatusPotential, false},
		{types.StatusCompleted, types.StatusAccepted, false},
		{types.StatusDeclined, types.StatusAccepted, false},
		{types.StatusFailed, types.StatusAccepted, false},
		{types.StatusAbandoned, types.StatusAccepted, false},
	}
	for _, tc := range cases {
		if got := transitionAllowed(tc.from, tc.to); got != tc.want {
			t.Errorf("transitionAllowed(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func seedQuest(t *testing.T, db *gorm.DB, userID uuid.UUID, status types.QuestStatus) *types.UserQuest {
	t.Helper()
	template := &types.QuestTemplate{
		ID:            uuid.New(),
		Text:          "Take a ten minute walk around the block",
		Category:      types.CategoryFitness,
		Difficulty:    types.DifficultyEasy,
		EstimatedTime: "10 minutes",
		Tags:          marshalTags([]string{"walking"}),
		OwnerUserID:   &userID,
	}
	require.NoError(t, db.Create(template).Error)

	quest := &types.UserQuest{
		ID:              uuid.New(),
		UserID:          userID,
		QuestTemplateID: template.ID,
		Status:          status,
	}
	require.NoError(t, db.Create(quest).Error)
	return quest
}

func TestTransitionAcceptSetsTimestamp(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)
	quest := seedQuest(t, db, user.ID, types.StatusPotential)

	updated, err := svc.Transition(context.Background(), nil, quest.ID, types.StatusAccepted, nil)
	require.NoError(t, err)
	require.Equal(t, types.StatusAccepted, updated.Status)
	require.NotNil(t, updated.AcceptedAt)
	require.Nil(t, updated.CompletedAt)
}

func TestTransitionCompleteAppliesFeedback(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)
	quest := seedQuest(t, db, user.ID, types.StatusAccepted)

	rating := types.RatingThumbsUp
	comment := "loved it"
	timeSpent := 12
	updated, err := svc.Transition(context.Background(), nil, quest.ID, types.StatusCompleted, &QuestFeedback{
		Rating:    &rating,
		Comment:   &comment,
		TimeSpent: &timeSpent,
	})
	require.NoError(t, err)
	require.Equal(t, types.StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedAt)
	require.Equal(t, rating, *updated.FeedbackRating)
	require.Equal(t, comment, *updated.FeedbackComment)
	require.Equal(t, timeSpent, *updated.TimeSpent)
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)
	quest := seedQuest(t, db, user.ID, types.StatusPotential)

	_, err := svc.Transition(context.Background(), nil, quest.ID, types.StatusCompleted, nil)
	var transitionErr *InvalidStatusTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, types.StatusPotential, transitionErr.From)
	require.Equal(t, types.StatusCompleted, transitionErr.To)

	// terminal states stay terminal
	declined := seedQuest(t, db, user.ID, types.StatusDeclined)
	_, err = svc.Transition(context.Background(), nil, declined.ID, types.StatusAccepted, nil)
	require.ErrorAs(t, err, &transitionErr)
}

func TestTransitionUnknownQuest(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))

	_, err := svc.Transition(context.Background(), nil, uuid.New(), types.StatusAccepted, nil)
	require.True(t, errors.Is(err, ErrNotFound))
}

func TestTransitionRejectsBadFeedback(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	svc := NewQuestLifecycleService(db, log, repos.NewUserQuestRepo(db, log))
	user := createTestUser(t, db)
	quest := seedQuest(t, db, user.ID, types.StatusAccepted)

	badRating := types.FeedbackRating("meh")
	_, err := svc.Transition(context.Background(), nil, quest.ID, types.StatusCompleted, &QuestFeedback{Rating: &badRating})
	require.True(t, errors.Is(err, ErrValidation))

	negative := -3
	_, err = svc.Transition(context.Background(), nil, quest.ID, types.StatusCompleted, &QuestFeedback{TimeSpent: &negative})
	require.True(t, errors.Is(err, ErrValidation))
}
