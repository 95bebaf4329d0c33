package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

const localDateLayout = "2006-01-02"

type HistoryStats struct {
	Streak                int      `json:"streak"`
	SuccessRate           float64  `json:"success_rate"`
	MostCompletedCategory string   `json:"most_completed_category"`
	TopTags               []string `json:"top_tags"`
	TotalCompleted        int64    `json:"total_completed"`
	TotalAccepted         int64    `json:"total_accepted"`
}

type DayQuest struct {
	ID        uuid.UUID           `json:"id"`
	Text      string              `json:"text"`
	Category  types.QuestCategory `json:"category"`
	Completed bool                `json:"completed"`
	Skipped   bool                `json:"skipped"`
}

type DayHistory struct {
	Date           string     `json:"date"`
	Quests         []DayQuest `json:"quests"`
	CompletedCount int        `json:"completed_count"`
	TotalCount     int        `json:"total_count"`
}

// HistoryService derives read-only aggregates from a user's quest rows.
type HistoryService interface {
	Stats(ctx context.Context, userID uuid.UUID) (*HistoryStats, error)
	SevenDayHistory(ctx context.Context, userID uuid.UUID) ([]DayHistory, error)
}

type historyService struct {
	db         *gorm.DB
	log        *logger.Logger
	questRepo  repos.UserQuestRepo
	profileSvc UserProfileService
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, questRepo repos.UserQuestRepo, profileSvc UserProfileService) HistoryService {
	serviceLog := log.With("service", "HistoryService")
	return &historyService{db: db, log: serviceLog, questRepo: questRepo, profileSvc: profileSvc}
}

// streakLength counts the consecutive run of days with completions ending
// today or yesterday. completionDays holds local dates in localDateLayout.
func streakLength(completionDays map[string]bool, localToday time.Time) int {
	day := localToday
	if !completionDays[day.Format(localDateLayout)] {
		day = day.AddDate(0, 0, -1)
		if !completionDays[day.Format(localDateLayout)] {
			return 0
		}
	}
	streak := 0
	for completionDays[day.Format(localDateLayout)] {
		streak++
		day = day.AddDate(0, 0, -1)
	}
	return streak
}

func (s *historyService) Stats(ctx context.Context, userID uuid.UUID) (*HistoryStats, error) {
	localNow := s.profileSvc.LocalNow(ctx, userID)

	completed, err := s.questRepo.GetCompletedByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("Failed to load completed quests: %w", err)
	}

	completionDays := map[string]bool{}
	categoryCounts := map[types.QuestCategory]int{}
	tagCounts := map[string]int{}
	for _, quest := range completed {
		if quest.CompletedAt != nil {
			completionDays[quest.CompletedAt.In(localNow.Location()).Format(localDateLayout)] = true
		}
		if quest.Template != nil {
			categoryCounts[quest.Template.Category]++
			for _, tag := range parseTags(quest.Template.Tags) {
				tagCounts[tag]++
			}
		}
	}

	totalCompleted := int64(len(completed))
	totalAccepted, err := s.questRepo.CountByUserAndStatuses(ctx, nil, userID, []types.QuestStatus{
		types.StatusAccepted, types.StatusCompleted, types.StatusFailed, types.StatusAbandoned,
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to count accepted quests: %w", err)
	}
	resolved, err := s.questRepo.CountByUserAndStatuses(ctx, nil, userID, []types.QuestStatus{
		types.StatusCompleted, types.StatusFailed, types.StatusAbandoned,
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to count resolved quests: %w", err)
	}

	successRate := 0.0
	if resolved > 0 {
		successRate = math.Round(float64(totalCompleted)/float64(resolved)*1000) / 10
	}

	return &HistoryStats{
		Streak:                streakLength(completionDays, localNow),
		SuccessRate:           successRate,
		MostCompletedCategory: topCategory(categoryCounts),
		TopTags:               topTags(tagCounts, 5),
		TotalCompleted:        totalCompleted,
		TotalAccepted:         totalAccepted,
	}, nil
}

// topCategory breaks count ties lexicographically so results are stable.
func topCategory(counts map[types.QuestCategory]int) string {
	best := ""
	bestCount := 0
	for cat, count := range counts {
		if count > bestCount || (count == bestCount && best != "" && string(cat) < best) {
			best = string(cat)
			bestCount = count
		}
	}
	return best
}

func topTags(counts map[string]int, k int) []string {
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if len(tags) > k {
		tags = tags[:k]
	}
	return tags
}

func parseTags(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}

func (s *historyService) SevenDayHistory(ctx context.Context, userID uuid.UUID) ([]DayHistory, error) {
	localNow := s.profileSvc.LocalNow(ctx, userID)
	loc := localNow.Location()
	today := time.Date(localNow.Year(), localNow.Month(), localNow.Day(), 0, 0, 0, 0, loc)
	windowStart := today.AddDate(0, 0, -7)

	quests, err := s.questRepo.GetByUserSince(ctx, nil, userID, windowStart.UTC().AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("Failed to load quest history: %w", err)
	}

	byDay := map[string][]DayQuest{}
	for _, quest := range quests {
		local := quest.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if day.Before(windowStart) || !day.Before(today) {
			continue
		}
		key := day.Format(localDateLayout)
		entry := DayQuest{
			ID:        quest.ID,
			Text:      quest.DisplayText(),
			Completed: quest.Status == types.StatusCompleted,
			Skipped:   quest.Status == types.StatusDeclined || quest.Status == types.StatusAbandoned,
		}
		if quest.Template != nil {
			entry.Category = quest.Template.Category
		}
		byDay[key] = append(byDay[key], entry)
	}

	// oldest day first, today excluded
	history := make([]DayHistory, 0, 7)
	for offset := 7; offset >= 1; offset-- {
		day := today.AddDate(0, 0, -offset)
		key := day.Format(localDateLayout)
		entries := byDay[key]
		if entries == nil {
			entries = []DayQuest{}
		}
		completedCount := 0
		for _, e := range entries {
			if e.Completed {
				completedCount++
			}
		}
		history = append(history, DayHistory{
			Date:           key,
			Quests:         entries,
			CompletedCount: completedCount,
			TotalCount:     len(entries),
		})
	}
	return history, nil
}
