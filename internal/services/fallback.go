package services

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/types"
)

// FallbackLibrary serves curated quests when the LLM path is unavailable.
type FallbackLibrary interface {
	// Select returns up to n quests matching difficulty and maxTime, drawn
	// from the requested categories first and widened to the rest when short.
	// Sampling is without replacement from the injected RNG.
	Select(categories []types.QuestCategory, difficulty types.QuestDifficulty, maxTime int, n int) []GeneratedQuest
}

type fallbackLibrary struct {
	log   *logger.Logger
	rng   *rand.Rand
	byCat map[types.QuestCategory][]GeneratedQuest
}

func NewFallbackLibrary(log *logger.Logger, rng *rand.Rand) FallbackLibrary {
	return &fallbackLibrary{
		log:   log.With("service", "FallbackLibrary"),
		rng:   rng,
		byCat: curatedQuests(),
	}
}

// ParseEstimatedMinutes extracts the upper bound in minutes from strings
// like "5 minutes" or "5-10 minutes". Returns false when no number is found.
func ParseEstimatedMinutes(estimated string) (int, bool) {
	maxVal := 0
	found := false
	cur := strings.Builder{}
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		if v, err := strconv.Atoi(cur.String()); err == nil {
			found = true
			if v > maxVal {
				maxVal = v
			}
		}
		cur.Reset()
	}
	for _, r := range estimated {
		if r >= '0' && r <= '9' {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return maxVal, found
}

func (f *fallbackLibrary) Select(categories []types.QuestCategory, difficulty types.QuestDifficulty, maxTime int, n int) []GeneratedQuest {
	if n <= 0 {
		return []GeneratedQuest{}
	}

	requested := map[types.QuestCategory]bool{}
	for _, c := range categories {
		requested[c] = true
	}
	// empty category preference means "any"
	anyCategory := len(requested) == 0

	matches := func(q GeneratedQuest, inRequested bool) bool {
		if q.Difficulty != difficulty {
			return false
		}
		minutes, ok := ParseEstimatedMinutes(q.EstimatedTime)
		if !ok || minutes > maxTime {
			return false
		}
		if anyCategory {
			return true
		}
		return requested[q.Category] == inRequested
	}

	var primary, widened []GeneratedQuest
	for _, cat := range types.AllCategories {
		for _, q := range f.byCat[cat] {
			if matches(q, true) {
				primary = append(primary, q)
			} else if !anyCategory && matches(q, false) {
				widened = append(widened, q)
			}
		}
	}

	f.rng.Shuffle(len(primary), func(i, j int) { primary[i], primary[j] = primary[j], primary[i] })
	f.rng.Shuffle(len(widened), func(i, j int) { widened[i], widened[j] = widened[j], widened[i] })

	out := primary
	if len(out) < n {
		out = append(out, widened...)
	}
	if len(out) > n {
		out = out[:n]
	}
	if len(out) == 0 {
		f.log.Warn("Fallback library has no quests for request", "difficulty", difficulty, "max_time", maxTime)
	}
	return out
}

func quest(text string, cat types.QuestCategory, diff types.QuestDifficulty, estimated string, tags ...string) GeneratedQuest {
	return GeneratedQuest{
		Text:          text,
		Category:      cat,
		Difficulty:    diff,
		EstimatedTime: estimated,
		Tags:          tags,
	}
}

func curatedQuests() map[types.QuestCategory][]GeneratedQuest {
	return map[types.QuestCategory][]GeneratedQuest{
		types.CategoryFitness: {
			quest("Do 20 jumping jacks right where you are standing.", types.CategoryFitness, types.DifficultyEasy, "2-3 minutes", "quick", "cardio"),
			quest("Hold a plank for 60 seconds, resting as needed.", types.CategoryFitness, types.DifficultyEasy, "3-5 minutes", "core"),
			quest("Take a brisk 10 minute walk around your block.", types.CategoryFitness, types.DifficultyEasy, "10 minutes", "walking", "fresh-air"),
			quest("Do three rounds of 10 squats, 10 push-ups, and 10 sit-ups.", types.CategoryFitness, types.DifficultyMedium, "10-15 minutes", "strength", "circuit"),
			quest("Stretch every major muscle group, holding each stretch for 30 seconds.", types.CategoryFitness, types.DifficultyMedium, "12 minutes", "mobility"),
			quest("Run a full mile without stopping, at whatever pace you can keep.", types.CategoryFitness, types.DifficultyHard, "10-15 minutes", "running", "endurance"),
			quest("Climb every flight of stairs in your building twice.", types.CategoryFitness, types.DifficultyHard, "15 minutes", "stairs", "cardio"),
		},
		types.CategorySocial: {
			quest("Text a friend you have not spoken to in over a month.", types.CategorySocial, types.DifficultyEasy, "2 minutes", "reconnect"),
			quest("Give a genuine compliment to the next person you talk to.", types.CategorySocial, types.DifficultyEasy, "1-2 minutes", "kindness"),
			quest("Call a family member just to ask how their week is going.", types.CategorySocial, types.DifficultyMedium, "10-15 minutes", "family", "call"),
			quest("Write a short thank-you note to someone who helped you recently.", types.CategorySocial, types.DifficultyMedium, "10 minutes", "gratitude"),
			quest("Strike up a conversation with a stranger and learn one interesting thing about them.", types.CategorySocial, types.DifficultyHard, "10-15 minutes", "courage", "conversation"),
		},
		types.CategoryMindfulness: {
			quest("Sit quietly and take 10 slow, deep breaths, counting each one.", types.CategoryMindfulness, types.DifficultyEasy, "2-3 minutes", "breathing"),
			quest("Write down three things you are grateful for today.", types.CategoryMindfulness, types.DifficultyEasy, "5 minutes", "gratitude", "journaling"),
			quest("Do a 10 minute guided body-scan meditation.", types.CategoryMindfulness, types.DifficultyMedium, "10 minutes", "meditation"),
			quest("Spend 10 minutes journaling about something on your mind, without editing yourself.", types.CategoryMindfulness, types.DifficultyMedium, "10-12 minutes", "journaling"),
			quest("Go 15 minutes doing one single task with zero notifications and no multitasking.", types.CategoryMindfulness, types.DifficultyHard, "15 minutes", "focus", "digital-detox"),
		},
		types.CategoryChores: {
			quest("Clear everything off one surface and wipe it down.", types.CategoryChores, types.DifficultyEasy, "5 minutes", "declutter"),
			quest("Make your bed properly, pillows and all.", types.CategoryChores, types.DifficultyEasy, "3 minutes", "tidy"),
			quest("Sort one drawer you have been avoiding and throw out what you do not need.", types.CategoryChores, types.DifficultyMedium, "10-15 minutes", "declutter", "organize"),
			quest("Take out every bin in the house and put fresh liners in.", types.CategoryChores, types.DifficultyMedium, "10 minutes", "cleaning"),
			quest("Deep-clean one appliance you never clean, like the microwave or kettle.", types.CategoryChores, types.DifficultyHard, "15 minutes", "deep-clean"),
		},
		types.CategoryHobbies: {
			quest("Spend 10 minutes on a hobby you have neglected this month.", types.CategoryHobbies, types.DifficultyEasy, "10 minutes", "revisit"),
			quest("Look up one new technique for a hobby you enjoy and bookmark it.", types.CategoryHobbies, types.DifficultyEasy, "5-10 minutes", "research"),
			quest("Practice a skill from one of your hobbies deliberately for 15 minutes.", types.CategoryHobbies, types.DifficultyMedium, "15 minutes", "practice"),
			quest("Start a tiny project you can finish in one sitting.", types.CategoryHobbies, types.DifficultyMedium, "15 minutes", "project"),
			quest("Teach someone else one thing from a hobby you know well.", types.CategoryHobbies, types.DifficultyHard, "15 minutes", "teaching", "sharing"),
		},
		types.CategoryOutdoors: {
			quest("Step outside and spend five minutes just noticing the weather and sky.", types.CategoryOutdoors, types.DifficultyEasy, "5 minutes", "fresh-air"),
			quest("Walk to the nearest green space and sit there for a few minutes.", types.CategoryOutdoors, types.DifficultyEasy, "10-15 minutes", "walking", "nature"),
			quest("Find and photograph three different kinds of plants near your home.", types.CategoryOutdoors, types.DifficultyMedium, "10-15 minutes", "nature", "photography"),
			quest("Eat your next meal or snack outside, away from screens.", types.CategoryOutdoors, types.DifficultyMedium, "15 minutes", "mealtime"),
			quest("Pick up ten pieces of litter on a short walk around your neighborhood.", types.CategoryOutdoors, types.DifficultyHard, "15 minutes", "community", "walking"),
		},
		types.CategoryLearning: {
			quest("Read one article about a topic you know nothing about.", types.CategoryLearning, types.DifficultyEasy, "5-10 minutes", "reading"),
			quest("Learn how to say hello in three languages you do not speak.", types.CategoryLearning, types.DifficultyEasy, "5 minutes", "languages"),
			quest("Watch a short educational video and write down two things you learned.", types.CategoryLearning, types.DifficultyMedium, "10-15 minutes", "video", "notes"),
			quest("Memorize a short poem or quote that you like.", types.CategoryLearning, types.DifficultyMedium, "10 minutes", "memory"),
			quest("Explain a concept you recently learned to someone else in plain words.", types.CategoryLearning, types.DifficultyHard, "15 minutes", "teaching"),
		},
		types.CategoryCreativity: {
			quest("Doodle whatever comes to mind for five minutes, no judging.", types.CategoryCreativity, types.DifficultyEasy, "5 minutes", "drawing"),
			quest("Write a six-word story about your day.", types.CategoryCreativity, types.DifficultyEasy, "3-5 minutes", "writing"),
			quest("Take five photos of ordinary objects from unusual angles.", types.CategoryCreativity, types.DifficultyMedium, "10 minutes", "photography"),
			quest("Write a short paragraph from the point of view of an object in your room.", types.CategoryCreativity, types.DifficultyMedium, "10-15 minutes", "writing", "perspective"),
			quest("Compose a tiny tune or rhythm and record it on your phone.", types.CategoryCreativity, types.DifficultyHard, "15 minutes", "music"),
		},
	}
}
