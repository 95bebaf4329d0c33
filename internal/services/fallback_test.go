package services

import (
	"testing"

	"github.com/yungbote/sidequest-backend/internal/types"
)

func TestParseEstimatedMinutes(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		want   int
		wantOK bool
	}{
		{"plain minutes", "5 minutes", 5, true},
		{"range takes upper bound", "5-10 minutes", 10, true},
		{"bare number", "15", 15, true},
		{"number embedded in words", "about 20 min", 20, true},
		{"multiple numbers takes max", "10 to 25 minutes", 25, true},
		{"no number", "a little while", 0, false},
		{"empty", "", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseEstimatedMinutes(tc.input)
			if ok != tc.wantOK {
				t.Fatalf("ParseEstimatedMinutes(%q) ok = %v, want %v", tc.input, ok, tc.wantOK)
			}
			if got != tc.want {
				t.Fatalf("ParseEstimatedMinutes(%q) = %d, want %d", tc.input, got, tc.want)
			}
		})
	}
}

func TestFallbackSelectMatchesPreferences(t *testing.T) {
	log := newTestLogger(t)
	lib := NewFallbackLibrary(log, newTestRNG())

	quests := lib.Select([]types.QuestCategory{types.CategoryFitness}, types.DifficultyEasy, 15, 3)
	if len(quests) != 3 {
		t.Fatalf("expected 3 quests, got %d", len(quests))
	}
	for _, q := range quests {
		if q.Category != types.CategoryFitness {
			t.Errorf("quest %q has category %q, want fitness", q.Text, q.Category)
		}
		if q.Difficulty != types.DifficultyEasy {
			t.Errorf("quest %q has difficulty %q, want easy", q.Text, q.Difficulty)
		}
		minutes, ok := ParseEstimatedMinutes(q.EstimatedTime)
		if !ok || minutes > 15 {
			t.Errorf("quest %q has estimated time %q, want <= 15 minutes", q.Text, q.EstimatedTime)
		}
	}
}

func TestFallbackSelectWidensWhenCategoryShort(t *testing.T) {
	log := newTestLogger(t)
	lib := NewFallbackLibrary(log, newTestRNG())

	// one narrow category cannot carry a large request alone
	quests := lib.Select([]types.QuestCategory{types.CategoryFitness}, types.DifficultyMedium, 60, 10)
	if len(quests) == 0 {
		t.Fatal("expected widened selection, got none")
	}
	sawOther := false
	for _, q := range quests {
		if q.Difficulty != types.DifficultyMedium {
			t.Errorf("quest %q has difficulty %q, want medium", q.Text, q.Difficulty)
		}
		if q.Category != types.CategoryFitness {
			sawOther = true
		}
	}
	if len(quests) > 3 && !sawOther {
		t.Error("expected categories outside the requested set once the pool ran short")
	}
}

func TestFallbackSelectEmptyCategoriesMeansAny(t *testing.T) {
	log := newTestLogger(t)
	lib := NewFallbackLibrary(log, newTestRNG())

	quests := lib.Select(nil, types.DifficultyMedium, 30, 5)
	if len(quests) != 5 {
		t.Fatalf("expected 5 quests, got %d", len(quests))
	}
}

func TestFallbackSelectNoReplacement(t *testing.T) {
	log := newTestLogger(t)
	lib := NewFallbackLibrary(log, newTestRNG())

	quests := lib.Select(nil, types.DifficultyEasy, 60, 20)
	seen := map[string]bool{}
	for _, q := range quests {
		if seen[q.Text] {
			t.Fatalf("quest %q returned twice", q.Text)
		}
		seen[q.Text] = true
	}
}

func TestFallbackSelectZeroCount(t *testing.T) {
	log := newTestLogger(t)
	lib := NewFallbackLibrary(log, newTestRNG())

	if got := lib.Select(nil, types.DifficultyEasy, 15, 0); len(got) != 0 {
		t.Fatalf("expected no quests for n=0, got %d", len(got))
	}
}
