package services

import (
	"fmt"
	"strings"

	"github.com/yungbote/sidequest-backend/internal/types"
)

const questSystemPrompt = `You are SideQuest, a generator of small, concrete, real-world daily quests. You respond with a single JSON object and nothing else.`

// BuildQuestPrompt assembles the user-role generation message from the
// user's preferences, their local time context, free-text notes, and up to
// four liked exemplars. Deterministic modulo the exemplar sample.
func BuildQuestPrompt(prefs GenerationPreferences, genCtx GenerationContext, notes string, exemplars []string, n int) string {
	var b strings.Builder

	categories := prefs.Categories
	if len(categories) == 0 {
		categories = types.AllCategories
	}
	catNames := make([]string, 0, len(categories))
	for _, c := range categories {
		catNames = append(catNames, string(c))
	}

	fmt.Fprintf(&b, "Generate exactly %d daily quests for one person.\n\n", n)

	b.WriteString("Constraints:\n")
	fmt.Fprintf(&b, "- Allowed categories: %s. Never invent new categories.\n", strings.Join(catNames, ", "))
	fmt.Fprintf(&b, "- Target difficulty: %s.\n", prefs.Difficulty)
	fmt.Fprintf(&b, "- Each quest should fit inside %d minutes, except quests you mark ambitious.\n", prefs.MaxTime)
	b.WriteString("- Quest text must be a single concrete instruction between 10 and 500 characters.\n\n")

	b.WriteString("Design guide:\n")
	b.WriteString("- Vary the quests; no two should feel like the same idea reworded.\n")
	b.WriteString("- Mix time scales: roughly 30% micro quests, 50% medium, 20% ambitious.\n")
	b.WriteString("- Spread quests across the allowed categories rather than clustering in one.\n")
	b.WriteString("- Avoid the obvious defaults (drink water, make your bed) unless given a fresh twist.\n")
	b.WriteString("- Include at least one quest that gently pushes the person out of their comfort zone.\n\n")

	b.WriteString("Respond with JSON in exactly this shape:\n")
	b.WriteString(`{"quests": [{"text": string, "category": string, "estimated_time": string, "difficulty": string, "ambitious": boolean, "tags": [string]}]}`)
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Context: it is %s on %s in the person's local time.\n", genCtx.LocalTime, genCtx.DayOfWeek)
	if notes != "" {
		fmt.Fprintf(&b, "Notes from the person: %s\n", notes)
	}

	if len(exemplars) > 0 {
		b.WriteString("\nQuests this person has liked before:\n")
		for _, ex := range exemplars {
			fmt.Fprintf(&b, "- %s\n", ex)
		}
	}

	return b.String()
}
