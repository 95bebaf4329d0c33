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

const (
	// boardRefreshHour anchors the user-local "day start" for refresh checks.
	boardRefreshHour = 7
	boardQuestCount  = 3
)

type BoardWithQuests struct {
	Board  *types.QuestBoard
	Quests []*types.UserQuest
}

type QuestBoardService interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.QuestBoard, error)
	NeedsRefresh(ctx context.Context, userID uuid.UUID) (bool, error)
	// Refresh generates replacement quests, then cycles stale quests off
	// the board and attaches the new ones inside one transaction holding a
	// lock on the active board row.
	Refresh(ctx context.Context, userID uuid.UUID) (*BoardWithQuests, error)
	// GetRefreshed refreshes when the user's local day calls for it, then
	// returns the board with its quests. A concurrent refresh that lands
	// first wins; this path never cycles a board twice in one local day.
	GetRefreshed(ctx context.Context, userID uuid.UUID) (*BoardWithQuests, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

type questBoardService struct {
	db           *gorm.DB
	log          *logger.Logger
	boardRepo    repos.QuestBoardRepo
	questRepo    repos.UserQuestRepo
	templateRepo repos.QuestTemplateRepo
	profileSvc   UserProfileService
	lifecycle    QuestLifecycleService
	generator    QuestGenerator
}

func NewQuestBoardService(
	db *gorm.DB,
	log *logger.Logger,
	boardRepo repos.QuestBoardRepo,
	questRepo repos.UserQuestRepo,
	templateRepo repos.QuestTemplateRepo,
	profileSvc UserProfileService,
	lifecycle QuestLifecycleService,
	generator QuestGenerator,
) QuestBoardService {
	serviceLog := log.With("service", "QuestBoardService")
	return &questBoardService{
		db:           db,
		log:          serviceLog,
		boardRepo:    boardRepo,
		questRepo:    questRepo,
		templateRepo: templateRepo,
		profileSvc:   profileSvc,
		lifecycle:    lifecycle,
		generator:    generator,
	}
}

// boardNeedsRefresh reports whether lastRefreshed predates the most recent
// 07:00 in the user's local day. A zero lastRefreshed always needs one.
// Stored timestamps with no zone are read as UTC by the driver.
func boardNeedsRefresh(lastRefreshed time.Time, localNow time.Time) bool {
	anchor := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), boardRefreshHour, 0, 0, 0, localNow.Location())
	if localNow.Before(anchor) {
		anchor = anchor.AddDate(0, 0, -1)
	}
	return lastRefreshed.Before(anchor)
}

func (s *questBoardService) GetOrCreate(ctx context.Context, userID uuid.UUID) (*types.QuestBoard, error) {
	board, err := s.boardRepo.GetActiveByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load board: %w", err)
	}
	if board != nil {
		return board, nil
	}

	board = &types.QuestBoard{ID: uuid.New(), UserID: userID, IsActive: true}
	if _, err := s.boardRepo.Create(ctx, nil, []*types.QuestBoard{board}); err != nil {
		// unique active-board index lost us the race; the winner's row wins
		raced, rErr := s.boardRepo.GetActiveByUserID(ctx, nil, userID)
		if rErr == nil && raced != nil {
			return raced, nil
		}
		return nil, fmt.Errorf("Failed to create board: %w", err)
	}
	return board, nil
}

func (s *questBoardService) NeedsRefresh(ctx context.Context, userID uuid.UUID) (bool, error) {
	board, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	localNow := s.profileSvc.LocalNow(ctx, userID)
	return boardNeedsRefresh(board.LastRefreshed, localNow), nil
}

func (s *questBoardService) Refresh(ctx context.Context, userID uuid.UUID) (*BoardWithQuests, error) {
	return s.refresh(ctx, userID, true)
}

// refresh generates replacement quests first and only then opens the
// transaction, so the row lock is never held across the LLM call and the
// generation log lands even when the transaction rolls back. With force
// unset, a board another request already refreshed is left alone and the
// pre-generated quests are discarded.
func (s *questBoardService) refresh(ctx context.Context, userID uuid.UUID, force bool) (*BoardWithQuests, error) {
	profile, err := s.profileSvc.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	localNow := s.profileSvc.LocalNow(ctx, userID)
	prefs := GenerationPreferences{
		Categories: profile.ParsedCategories(),
		Difficulty: profile.Difficulty,
		MaxTime:    profile.MaxTime,
	}

	result, err := s.generator.Generate(ctx, &userID, prefs, boardQuestCount)
	if err != nil {
		return nil, fmt.Errorf("Generation failed: %w", err)
	}

	var boardID uuid.UUID
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		board, err := s.boardRepo.GetActiveByUserIDForUpdate(ctx, tx, userID)
		if err != nil {
			return fmt.Errorf("Failed to lock board: %w", err)
		}
		if board == nil {
			board = &types.QuestBoard{ID: uuid.New(), UserID: userID, IsActive: true}
			if _, err := s.boardRepo.Create(ctx, tx, []*types.QuestBoard{board}); err != nil {
				return fmt.Errorf("Failed to create board: %w", err)
			}
		}
		boardID = board.ID

		// a concurrent refresh may have won while we were generating;
		// the loser observes the winner's board
		if !force && !boardNeedsRefresh(board.LastRefreshed, localNow) {
			return nil
		}

		if err := s.cleanup(ctx, tx, board); err != nil {
			return err
		}
		return s.populate(ctx, tx, userID, board, result)
	})
	if err != nil {
		return nil, err
	}

	board, err := s.boardRepo.GetActiveByUserID(ctx, nil, userID)
	if err != nil || board == nil {
		return nil, fmt.Errorf("Failed to reload board %s after refresh: %w", boardID, err)
	}
	quests, err := s.questRepo.GetByBoardID(ctx, nil, board.ID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load board quests: %w", err)
	}
	return &BoardWithQuests{Board: board, Quests: quests}, nil
}

// cleanup cycles every attached quest off the board: potential quests are
// declined, accepted quests are failed, terminal ones keep their status.
// All are detached so the history rows survive while the board empties.
func (s *questBoardService) cleanup(ctx context.Context, tx *gorm.DB, board *types.QuestBoard) error {
	attached, err := s.questRepo.GetByBoardID(ctx, tx, board.ID)
	if err != nil {
		return fmt.Errorf("Failed to load attached quests: %w", err)
	}

	for _, quest := range attached {
		switch quest.Status {
		case types.StatusPotential:
			if _, err := s.lifecycle.Transition(ctx, tx, quest.ID, types.StatusDeclined, nil); err != nil {
				return fmt.Errorf("Failed to decline stale quest %s: %w", quest.ID, err)
			}
		case types.StatusAccepted:
			if _, err := s.lifecycle.Transition(ctx, tx, quest.ID, types.StatusFailed, nil); err != nil {
				return fmt.Errorf("Failed to fail stale quest %s: %w", quest.ID, err)
			}
		}

		detached, err := s.questRepo.GetByID(ctx, tx, quest.ID)
		if err != nil || detached == nil {
			return fmt.Errorf("Failed to reload quest %s for detach: %w", quest.ID, err)
		}
		detached.QuestBoardID = nil
		detached.UpdatedAt = time.Now().UTC()
		if err := s.questRepo.Save(ctx, tx, detached); err != nil {
			return fmt.Errorf("Failed to detach quest %s: %w", quest.ID, err)
		}
	}
	return nil
}

// populate persists the pre-generated quests as user-owned templates plus
// potential board quests, then advances last_refreshed.
func (s *questBoardService) populate(ctx context.Context, tx *gorm.DB, userID uuid.UUID, board *types.QuestBoard, result *GenerationResult) error {
	for _, gq := range result.Quests {
		template := &types.QuestTemplate{
			ID:            uuid.New(),
			Text:          gq.Text,
			Category:      gq.Category,
			Difficulty:    gq.Difficulty,
			EstimatedTime: gq.EstimatedTime,
			Tags:          marshalTags(gq.Tags),
			OwnerUserID:   &userID,
			ModelUsed:     result.ModelUsed,
			FallbackUsed:  result.FallbackUsed,
		}
		if _, err := s.templateRepo.Create(ctx, tx, []*types.QuestTemplate{template}); err != nil {
			return fmt.Errorf("Failed to persist quest template: %w", err)
		}

		boardID := board.ID
		quest := &types.UserQuest{
			ID:              uuid.New(),
			UserID:          userID,
			QuestBoardID:    &boardID,
			QuestTemplateID: template.ID,
			Status:          types.StatusPotential,
		}
		if _, err := s.questRepo.Create(ctx, tx, []*types.UserQuest{quest}); err != nil {
			return fmt.Errorf("Failed to persist user quest: %w", err)
		}
	}

	board.LastRefreshed = time.Now().UTC()
	board.UpdatedAt = board.LastRefreshed
	if err := s.boardRepo.Save(ctx, tx, board); err != nil {
		return fmt.Errorf("Failed to advance board refresh time: %w", err)
	}
	return nil
}

func (s *questBoardService) GetRefreshed(ctx context.Context, userID uuid.UUID) (*BoardWithQuests, error) {
	needs, err := s.NeedsRefresh(ctx, userID)
	if err != nil {
		return nil, err
	}
	if needs {
		return s.refresh(ctx, userID, false)
	}

	board, err := s.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	quests, err := s.questRepo.GetByBoardID(ctx, nil, board.ID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load board quests: %w", err)
	}
	return &BoardWithQuests{Board: board, Quests: quests}, nil
}

func (s *questBoardService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return s.boardRepo.DeactivateByUserID(ctx, nil, userID)
}
