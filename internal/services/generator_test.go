package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/types"
)

func TestParseQuestPayload(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{
			name:    "well formed",
			raw:     `{"quests": [{"text": "Take a short walk outside today", "category": "fitness", "difficulty": "easy", "estimated_time": "10 minutes", "tags": ["walking"]}]}`,
			wantLen: 1,
		},
		{
			name:    "empty quests array",
			raw:     `{"quests": []}`,
			wantLen: 0,
		},
		{
			name:    "missing quests key",
			raw:     `{"results": []}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     "sorry, I cannot do that",
			wantErr: true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quests, err := parseQuestPayload(tc.raw)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error, got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(quests) != tc.wantLen {
				t.Fatalf("got %d quests, want %d", len(quests), tc.wantLen)
			}
		})
	}
}

const validLLMPayload = `{"quests": [
	{"text": "Do ten push-ups before your next coffee.", "category": "fitness", "difficulty": "easy", "estimated_time": "3 minutes", "tags": ["strength"]},
	{"text": "Text an old friend a photo that reminds you of them.", "category": "social", "difficulty": "easy", "estimated_time": "5 minutes", "tags": ["reconnect"]},
	{"text": "Write down three things you noticed on your commute.", "category": "mindfulness", "difficulty": "easy", "estimated_time": "5 minutes", "tags": ["noticing"]}
]}`

func TestGenerateUsesLLMResult(t *testing.T) {
	db := newTestDB(t)
	llm := llmReturning(validLLMPayload, 321)
	generator, _ := newTestGenerator(t, db, llm)
	user := createTestUser(t, db)

	result, err := generator.Generate(context.Background(), &user.ID, GenerationPreferences{
		Difficulty: types.DifficultyEasy,
		MaxTime:    15,
	}, 3)
	require.NoError(t, err)
	require.False(t, result.FallbackUsed)
	require.NotNil(t, result.ModelUsed)
	require.Equal(t, "stub-model", *result.ModelUsed)
	require.Len(t, result.Quests, 3)
}

func TestGenerateFallsBackOnTransportError(t *testing.T) {
	db := newTestDB(t)
	generator, _ := newTestGenerator(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	result, err := generator.Generate(context.Background(), &user.ID, GenerationPreferences{
		Categories: []types.QuestCategory{types.CategoryFitness},
		Difficulty: types.DifficultyEasy,
		MaxTime:    15,
	}, 3)
	require.NoError(t, err, "llm failures must not surface")
	require.True(t, result.FallbackUsed)
	require.Nil(t, result.ModelUsed)
	require.Len(t, result.Quests, 3)
	for _, q := range result.Quests {
		require.Equal(t, types.CategoryFitness, q.Category)
		minutes, ok := ParseEstimatedMinutes(q.EstimatedTime)
		require.True(t, ok)
		require.LessOrEqual(t, minutes, 15)
	}
}

func TestGenerateFallsBackOnGarbageJSON(t *testing.T) {
	db := newTestDB(t)
	generator, _ := newTestGenerator(t, db, llmReturning("I'd be happy to help! Here are some quests:", 50))
	user := createTestUser(t, db)

	result, err := generator.Generate(context.Background(), &user.ID, GenerationPreferences{
		Difficulty: types.DifficultyMedium,
		MaxTime:    15,
	}, 3)
	require.NoError(t, err)
	require.True(t, result.FallbackUsed)
	require.Len(t, result.Quests, 3)
}

func TestGenerateDropsInvalidQuests(t *testing.T) {
	db := newTestDB(t)
	payload := `{"quests": [
		{"text": "Do ten push-ups before your next coffee.", "category": "fitness", "difficulty": "easy", "estimated_time": "3 minutes"},
		{"text": "too short", "category": "fitness", "difficulty": "easy", "estimated_time": "3 minutes"},
		{"text": "A quest from a category nobody asked for.", "category": "gardening", "difficulty": "easy", "estimated_time": "3 minutes"},
		{"text": "A quest that takes far longer than the budget allows.", "category": "fitness", "difficulty": "easy", "estimated_time": "90 minutes"},
		{"text": "An ambitious quest may run over the time budget.", "category": "fitness", "difficulty": "hard", "estimated_time": "60 minutes", "ambitious": true}
	]}`
	generator, _ := newTestGenerator(t, db, llmReturning(payload, 100))
	user := createTestUser(t, db)

	result, err := generator.Generate(context.Background(), &user.ID, GenerationPreferences{
		Categories: []types.QuestCategory{types.CategoryFitness},
		Difficulty: types.DifficultyEasy,
		MaxTime:    15,
	}, 5)
	require.NoError(t, err)
	require.False(t, result.FallbackUsed)
	require.Len(t, result.Quests, 2)
	require.Equal(t, "Do ten push-ups before your next coffee.", result.Quests[0].Text)
	require.True(t, result.Quests[1].Ambitious)
}

func TestGenerateWritesLogRowPerInvocation(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	genLogRepo := repos.NewGenerationLogRepo(db, log)
	generator, _ := newTestGenerator(t, db, llmAlwaysFailing())
	user := createTestUser(t, db)

	prefs := GenerationPreferences{Difficulty: types.DifficultyEasy, MaxTime: 15}
	_, err := generator.Generate(context.Background(), &user.ID, prefs, 3)
	require.NoError(t, err)
	_, err = generator.Generate(context.Background(), &user.ID, prefs, 3)
	require.NoError(t, err)

	count, err := genLogRepo.CountByUser(context.Background(), nil, &user.ID)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	var rows []*types.QuestGenerationLog
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&rows).Error)
	for _, row := range rows {
		require.True(t, row.FallbackUsed)
		require.Nil(t, row.ModelUsed)
		require.NotEmpty(t, row.RequestPreferences)
	}
}

func TestGenerateNilUserSynthesizesContext(t *testing.T) {
	db := newTestDB(t)
	log := newTestLogger(t)
	genLogRepo := repos.NewGenerationLogRepo(db, log)
	generator, _ := newTestGenerator(t, db, llmAlwaysFailing())

	result, err := generator.Generate(context.Background(), nil, GenerationPreferences{
		Difficulty: types.DifficultyMedium,
		MaxTime:    30,
	}, 5)
	require.NoError(t, err)
	require.Len(t, result.Quests, 5)

	count, err := genLogRepo.CountByUser(context.Background(), nil, nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "ownerless generations log with a null user")
}
