package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/clients/redis"
	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

const (
	votingPoolDifficulty = types.DifficultyMedium
	votingPoolMaxTime    = 30
	statsCacheTTL        = 30 * time.Second
)

type VoteStats struct {
	ThumbsUp     int64   `json:"thumbs_up"`
	ThumbsDown   int64   `json:"thumbs_down"`
	Total        int64   `json:"total"`
	ApprovalRate float64 `json:"approval_rate"`
}

// VotingPoolService manages owner-less community templates: serving unvoted
// ones (generating more on demand), recording votes, and aggregating stats.
type VotingPoolService interface {
	GetToVoteOn(ctx context.Context, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error)
	SubmitVote(ctx context.Context, userID uuid.UUID, templateID uuid.UUID, vote types.FeedbackRating) (*types.QuestTemplateVote, error)
	MyVotes(ctx context.Context, userID uuid.UUID, limit int) ([]*types.QuestTemplateVote, error)
	Stats(ctx context.Context, templateID uuid.UUID) (*VoteStats, error)
}

type votingPoolService struct {
	db           *gorm.DB
	log          *logger.Logger
	templateRepo repos.QuestTemplateRepo
	voteRepo     repos.TemplateVoteRepo
	generator    QuestGenerator
	cache        redis.Cache
}

func NewVotingPoolService(
	db *gorm.DB,
	log *logger.Logger,
	templateRepo repos.QuestTemplateRepo,
	voteRepo repos.TemplateVoteRepo,
	generator QuestGenerator,
	cache redis.Cache,
) VotingPoolService {
	serviceLog := log.With("service", "VotingPoolService")
	return &votingPoolService{
		db:           db,
		log:          serviceLog,
		templateRepo: templateRepo,
		voteRepo:     voteRepo,
		generator:    generator,
		cache:        cache,
	}
}

func (s *votingPoolService) GetToVoteOn(ctx context.Context, userID uuid.UUID, limit int) ([]*types.QuestTemplate, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", ErrValidation)
	}

	templates, err := s.templateRepo.GetCommunityUnvoted(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("Failed to load voting pool: %w", err)
	}
	if len(templates) >= limit {
		return templates, nil
	}

	// pool is short; generate owner-less templates with a synthetic context
	shortfall := limit - len(templates)
	prefs := GenerationPreferences{
		Categories: nil,
		Difficulty: votingPoolDifficulty,
		MaxTime:    votingPoolMaxTime,
	}
	result, err := s.generator.Generate(ctx, nil, prefs, shortfall)
	if err != nil {
		return nil, fmt.Errorf("Voting pool generation failed: %w", err)
	}

	for _, gq := range result.Quests {
		template := &types.QuestTemplate{
			ID:            uuid.New(),
			Text:          gq.Text,
			Category:      gq.Category,
			Difficulty:    gq.Difficulty,
			EstimatedTime: gq.EstimatedTime,
			Tags:          marshalTags(gq.Tags),
			OwnerUserID:   nil,
			ModelUsed:     result.ModelUsed,
			FallbackUsed:  result.FallbackUsed,
		}
		if _, err := s.templateRepo.Create(ctx, nil, []*types.QuestTemplate{template}); err != nil {
			return nil, fmt.Errorf("Failed to persist voting template: %w", err)
		}
		templates = append(templates, template)
	}

	if len(templates) > limit {
		templates = templates[:limit]
	}
	return templates, nil
}

func (s *votingPoolService) SubmitVote(ctx context.Context, userID uuid.UUID, templateID uuid.UUID, vote types.FeedbackRating) (*types.QuestTemplateVote, error) {
	if !vote.Valid() {
		return nil, fmt.Errorf("%w: unknown vote %q", ErrValidation, vote)
	}

	templates, err := s.templateRepo.GetByIDs(ctx, nil, []uuid.UUID{templateID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load template: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	row := &types.QuestTemplateVote{
		ID:              uuid.New(),
		UserID:          userID,
		QuestTemplateID: templateID,
		Vote:            vote,
	}
	saved, err := s.voteRepo.Upsert(ctx, nil, row)
	if err != nil {
		return nil, fmt.Errorf("Failed to upsert vote: %w", err)
	}

	if s.cache != nil {
		s.cache.Del(ctx, statsCacheKey(templateID))
	}
	return saved, nil
}

func (s *votingPoolService) MyVotes(ctx context.Context, userID uuid.UUID, limit int) ([]*types.QuestTemplateVote, error) {
	votes, err := s.voteRepo.GetByUserID(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("Failed to load votes: %w", err)
	}
	return votes, nil
}

func statsCacheKey(templateID uuid.UUID) string {
	return "sidequest:vote_stats:" + templateID.String()
}

func (s *votingPoolService) Stats(ctx context.Context, templateID uuid.UUID) (*VoteStats, error) {
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, statsCacheKey(templateID)); ok {
			var cached VoteStats
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	templates, err := s.templateRepo.GetByIDs(ctx, nil, []uuid.UUID{templateID})
	if err != nil {
		return nil, fmt.Errorf("Failed to load template: %w", err)
	}
	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: template %s", ErrNotFound, templateID)
	}

	counts, err := s.voteRepo.CountByTemplate(ctx, nil, templateID)
	if err != nil {
		return nil, fmt.Errorf("Failed to count votes: %w", err)
	}

	stats := &VoteStats{
		ThumbsUp:   counts.ThumbsUp,
		ThumbsDown: counts.ThumbsDown,
		Total:      counts.ThumbsUp + counts.ThumbsDown,
	}
	if stats.Total > 0 {
		rate := float64(stats.ThumbsUp) / float64(stats.Total) * 100
		stats.ApprovalRate = math.Round(rate*10) / 10
	}

	if s.cache != nil {
		if raw, err := json.Marshal(stats); err == nil {
			s.cache.Set(ctx, statsCacheKey(templateID), raw, statsCacheTTL)
		}
	}
	return stats, nil
}
