package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type GenerationPreferences struct {
	Categories []types.QuestCategory `json:"categories"`
	Difficulty types.QuestDifficulty `json:"difficulty"`
	MaxTime    int                   `json:"max_time"`
}

// GenerationContext is the time-of-day snapshot fed to the prompt and
// persisted on the generation log. LocalTime is ISO-8601.
type GenerationContext struct {
	LocalTime string `json:"local_time"`
	DayOfWeek string `json:"day_of_week"`
}

type GeneratedQuest struct {
	Text          string                `json:"text"`
	Category      types.QuestCategory   `json:"category"`
	Difficulty    types.QuestDifficulty `json:"difficulty"`
	EstimatedTime string                `json:"estimated_time"`
	Ambitious     bool                  `json:"ambitious"`
	Tags          []string              `json:"tags"`
}

type GenerationResult struct {
	Quests       []GeneratedQuest
	FallbackUsed bool
	ModelUsed    *string
}

const (
	generationTemperature = 0.8
	generationMaxTokens   = 2048
	maxExemplars          = 4
)

// QuestGenerator orchestrates prompt building, the LLM call, validation,
// and the curated fallback. It never propagates provider failures; a
// catastrophic miss surfaces as an empty result plus a logged warning.
type QuestGenerator interface {
	Generate(ctx context.Context, userID *uuid.UUID, prefs GenerationPreferences, n int) (*GenerationResult, error)
}

type questGenerator struct {
	db            *gorm.DB
	log           *logger.Logger
	llm           OpenAIClient
	fallback      FallbackLibrary
	profileSvc    UserProfileService
	userQuestRepo repos.UserQuestRepo
	templateRepo  repos.QuestTemplateRepo
	genLogRepo    repos.GenerationLogRepo
	rng           *rand.Rand
}

func NewQuestGenerator(
	db *gorm.DB,
	log *logger.Logger,
	llm OpenAIClient,
	fallback FallbackLibrary,
	profileSvc UserProfileService,
	userQuestRepo repos.UserQuestRepo,
	templateRepo repos.QuestTemplateRepo,
	genLogRepo repos.GenerationLogRepo,
	rng *rand.Rand,
) QuestGenerator {
	return &questGenerator{
		db:            db,
		log:           log.With("service", "QuestGenerator"),
		llm:           llm,
		fallback:      fallback,
		profileSvc:    profileSvc,
		userQuestRepo: userQuestRepo,
		templateRepo:  templateRepo,
		genLogRepo:    genLogRepo,
		rng:           rng,
	}
}

func (g *questGenerator) Generate(ctx context.Context, userID *uuid.UUID, prefs GenerationPreferences, n int) (*GenerationResult, error) {
	started := time.Now()

	genCtx := g.buildContext(ctx, userID)
	notes := ""
	var exemplars []string
	if userID != nil {
		profile, err := g.profileSvc.GetOrCreate(ctx, *userID)
		if err != nil {
			g.log.Warn("Profile lookup failed during generation", "user_id", userID, "error", err)
		} else {
			notes = profile.AdditionalNotes
		}
		exemplars = g.sampleExemplars(ctx, *userID)
	}

	prompt := BuildQuestPrompt(prefs, genCtx, notes, exemplars, n)

	result := &GenerationResult{}
	tokensUsed := 0

	raw, tokens, llmErr := g.llm.Complete(ctx, questSystemPrompt, prompt, generationTemperature, generationMaxTokens)
	if llmErr == nil {
		tokensUsed = tokens
		quests, parseErr := parseQuestPayload(raw)
		if parseErr != nil {
			g.log.Warn("Could not parse LLM quest payload, using fallback", "error", parseErr)
			result.FallbackUsed = true
		} else {
			model := g.llm.Model()
			result.ModelUsed = &model
			result.Quests = g.validateQuests(quests, prefs)
		}
	} else {
		g.log.Warn("LLM completion failed, using fallback", "error", llmErr)
		result.FallbackUsed = true
	}

	if result.FallbackUsed {
		result.Quests = g.fallback.Select(prefs.Categories, prefs.Difficulty, prefs.MaxTime, n)
	}
	if len(result.Quests) > n {
		result.Quests = result.Quests[:n]
	}
	if len(result.Quests) == 0 {
		g.log.Warn("Generation produced no quests", "user_id", userID, "fallback_used", result.FallbackUsed)
	}

	g.writeLog(ctx, userID, prefs, genCtx, result, tokensUsed, time.Since(started))
	return result, nil
}

func (g *questGenerator) buildContext(ctx context.Context, userID *uuid.UUID) GenerationContext {
	if userID == nil {
		// voting-pool generations have no owner; synthesize a plausible moment
		hour := g.rng.Intn(24)
		day := time.Weekday(g.rng.Intn(7))
		synthetic := time.Date(2000, time.January, 1, hour, 0, 0, 0, time.UTC)
		return GenerationContext{
			LocalTime: synthetic.Format("15:04"),
			DayOfWeek: day.String(),
		}
	}
	localNow := g.profileSvc.LocalNow(ctx, *userID)
	return GenerationContext{
		LocalTime: localNow.Format(time.RFC3339),
		DayOfWeek: localNow.Weekday().String(),
	}
}

func (g *questGenerator) sampleExemplars(ctx context.Context, userID uuid.UUID) []string {
	var pool []string
	if liked, err := g.userQuestRepo.GetLikedTexts(ctx, nil, userID, 20); err == nil {
		pool = append(pool, liked...)
	}
	if templates, err := g.templateRepo.GetLikedByUser(ctx, nil, userID, 20); err == nil {
		for _, t := range templates {
			pool = append(pool, t.Text)
		}
	}
	g.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > maxExemplars {
		pool = pool[:maxExemplars]
	}
	return pool
}

func marshalTags(tags []string) datatypes.JSON {
	if tags == nil {
		tags = []string{}
	}
	raw, _ := json.Marshal(tags)
	return datatypes.JSON(raw)
}

func parseQuestPayload(raw string) ([]GeneratedQuest, error) {
	var payload struct {
		Quests *[]GeneratedQuest `json:"quests"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("non-JSON response: %w", err)
	}
	if payload.Quests == nil {
		return nil, fmt.Errorf("response missing quests key")
	}
	return *payload.Quests, nil
}

func (g *questGenerator) validateQuests(quests []GeneratedQuest, prefs GenerationPreferences) []GeneratedQuest {
	allowed := map[types.QuestCategory]bool{}
	for _, c := range prefs.Categories {
		allowed[c] = true
	}

	valid := make([]GeneratedQuest, 0, len(quests))
	for _, q := range quests {
		if len(q.Text) < 10 || len(q.Text) > 500 {
			g.log.Debug("Dropping quest with out-of-range text", "len", len(q.Text))
			continue
		}
		if !q.Category.Valid() {
			g.log.Debug("Dropping quest with unknown category", "category", q.Category)
			continue
		}
		if len(allowed) > 0 && !allowed[q.Category] {
			g.log.Debug("Dropping quest outside requested categories", "category", q.Category)
			continue
		}
		if !q.Difficulty.Valid() {
			g.log.Debug("Dropping quest with unknown difficulty", "difficulty", q.Difficulty)
			continue
		}
		minutes, ok := ParseEstimatedMinutes(q.EstimatedTime)
		if !ok {
			g.log.Debug("Dropping quest with unparseable estimated time", "estimated_time", q.EstimatedTime)
			continue
		}
		// ambitious quests may exceed the cap
		if !q.Ambitious && minutes > prefs.MaxTime {
			g.log.Debug("Dropping quest over time budget", "minutes", minutes, "max_time", prefs.MaxTime)
			continue
		}
		valid = append(valid, q)
	}
	return valid
}

func (g *questGenerator) writeLog(ctx context.Context, userID *uuid.UUID, prefs GenerationPreferences, genCtx GenerationContext, result *GenerationResult, tokensUsed int, elapsed time.Duration) {
	prefsJSON, _ := json.Marshal(prefs)
	ctxJSON, _ := json.Marshal(genCtx)
	questsJSON, _ := json.Marshal(result.Quests)

	row := &types.QuestGenerationLog{
		ID:                 uuid.New(),
		UserID:             userID,
		RequestPreferences: datatypes.JSON(prefsJSON),
		ContextData:        datatypes.JSON(ctxJSON),
		QuestsGenerated:    datatypes.JSON(questsJSON),
		ModelUsed:          result.ModelUsed,
		FallbackUsed:       result.FallbackUsed,
		GenerationTimeMs:   elapsed.Milliseconds(),
		TokensUsed:         tokensUsed,
	}
	if _, err := g.genLogRepo.Create(ctx, nil, []*types.QuestGenerationLog{row}); err != nil {
		g.log.Warn("Failed to write generation log", "error", err)
	}
}
