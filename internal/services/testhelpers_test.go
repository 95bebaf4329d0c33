package services

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	require.NoError(t, err)
	return log
}

// newTestDB gives each test its own in-memory sqlite database with the full
// schema. A single connection keeps :memory: stable across the pool.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&types.User{},
		&types.UserProfile{},
		&types.QuestTemplate{},
		&types.QuestBoard{},
		&types.UserQuest{},
		&types.QuestGenerationLog{},
		&types.QuestTemplateVote{},
	))
	return db
}

func newTestRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func createTestUser(t *testing.T, db *gorm.DB) *types.User {
	t.Helper()
	device := uuid.New().String()
	user := &types.User{ID: uuid.New(), DeviceUUID: &device}
	require.NoError(t, db.Create(user).Error)
	return user
}

// stubLLM is a canned OpenAIClient: it replays responses in order and
// records how often it was called.
type stubLLM struct {
	responses []stubResponse
	calls     int
}

type stubResponse struct {
	content string
	tokens  int
	err     error
}

func (s *stubLLM) Complete(ctx context.Context, systemMsg, userMsg string, temperature float64, maxTokens int) (string, int, error) {
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	r := s.responses[idx]
	return r.content, r.tokens, r.err
}

func (s *stubLLM) Model() string {
	return "stub-model"
}

func llmAlwaysFailing() *stubLLM {
	return &stubLLM{responses: []stubResponse{
		{err: &TransientLLMError{Err: fmt.Errorf("connection refused")}},
	}}
}

func llmReturning(content string, tokens int) *stubLLM {
	return &stubLLM{responses: []stubResponse{{content: content, tokens: tokens}}}
}

func newTestGenerator(t *testing.T, db *gorm.DB, llm OpenAIClient) (QuestGenerator, UserProfileService) {
	t.Helper()
	log := newTestLogger(t)
	rng := newTestRNG()
	profileSvc := NewUserProfileService(db, log, repos.NewUserProfileRepo(db, log))
	generator := NewQuestGenerator(
		db,
		log,
		llm,
		NewFallbackLibrary(log, rng),
		profileSvc,
		repos.NewUserQuestRepo(db, log),
		repos.NewQuestTemplateRepo(db, log),
		repos.NewGenerationLogRepo(db, log),
		rng,
	)
	return generator, profileSvc
}
