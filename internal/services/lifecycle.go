package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type QuestFeedback struct {
	Rating    *types.FeedbackRating
	Comment   *string
	TimeSpent *int
}

// QuestLifecycleService drives the status state machine on a single
// UserQuest. Ownership checks belong to the caller.
type QuestLifecycleService interface {
	Transition(ctx context.Context, tx *gorm.DB, questID uuid.UUID, newStatus types.QuestStatus, feedback *QuestFeedback) (*types.UserQuest, error)
}

// legalTransitions maps each non-terminal state to the states reachable
// from it. Everything else is rejected.
var legalTransitions = map[types.QuestStatus][]types.QuestStatus{
	types.StatusPotential: {types.StatusAccepted, types.StatusDeclined},
	types.StatusAccepted:  {types.StatusCompleted, types.StatusAbandoned, types.StatusFailed},
}

func transitionAllowed(from, to types.QuestStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type questLifecycleService struct {
	db        *gorm.DB
	log       *logger.Logger
	questRepo repos.UserQuestRepo
}

func NewQuestLifecycleService(db *gorm.DB, log *logger.Logger, questRepo repos.UserQuestRepo) QuestLifecycleService {
	serviceLog := log.With("service", "QuestLifecycleService")
	return &questLifecycleService{db: db, log: serviceLog, questRepo: questRepo}
}

func (s *questLifecycleService) Transition(ctx context.Context, tx *gorm.DB, questID uuid.UUID, newStatus types.QuestStatus, feedback *QuestFeedback) (*types.UserQuest, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, newStatus)
	}
	if feedback != nil {
		if feedback.Rating != nil && !feedback.Rating.Valid() {
			return nil, fmt.Errorf("%w: unknown feedback rating %q", ErrValidation, *feedback.Rating)
		}
		if feedback.TimeSpent != nil && *feedback.TimeSpent < 0 {
			return nil, fmt.Errorf("%w: time_spent must not be negative", ErrValidation)
		}
	}

	quest, err := s.questRepo.GetByID(ctx, tx, questID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load quest: %w", err)
	}
	if quest == nil {
		return nil, fmt.Errorf("%w: quest %s", ErrNotFound, questID)
	}

	if !transitionAllowed(quest.Status, newStatus) {
		return nil, &InvalidStatusTransitionError{From: quest.Status, To: newStatus}
	}

	now := time.Now().UTC()
	quest.Status = newStatus
	switch newStatus {
	case types.StatusAccepted:
		quest.AcceptedAt = &now
	case types.StatusCompleted:
		quest.CompletedAt = &now
	case types.StatusFailed:
		quest.FailedAt = &now
	case types.StatusAbandoned:
		quest.AbandonedAt = &now
	case types.StatusDeclined:
		quest.DeclinedAt = &now
	}

	if feedback != nil {
		if feedback.Rating != nil {
			quest.FeedbackRating = feedback.Rating
		}
		if feedback.Comment != nil {
			quest.FeedbackComment = feedback.Comment
		}
		if feedback.TimeSpent != nil {
			quest.TimeSpent = feedback.TimeSpent
		}
	}
	quest.UpdatedAt = now

	if err := s.questRepo.Save(ctx, tx, quest); err != nil {
		return nil, fmt.Errorf("Failed to save quest transition: %w", err)
	}
	return quest, nil
}
