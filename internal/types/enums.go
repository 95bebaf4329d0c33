package types

type QuestCategory string

const (
	CategoryFitness     QuestCategory = "fitness"
	CategorySocial      QuestCategory = "social"
	CategoryMindfulness QuestCategory = "mindfulness"
	CategoryChores      QuestCategory = "chores"
	CategoryHobbies     QuestCategory = "hobbies"
	CategoryOutdoors    QuestCategory = "outdoors"
	CategoryLearning    QuestCategory = "learning"
	CategoryCreativity  QuestCategory = "creativity"
)

// AllCategories preserves the canonical ordering used in prompts and
// fallback widening.
var AllCategories = []QuestCategory{
	CategoryFitness,
	CategorySocial,
	CategoryMindfulness,
	CategoryChores,
	CategoryHobbies,
	CategoryOutdoors,
	CategoryLearning,
	CategoryCreativity,
}

func (c QuestCategory) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

type QuestDifficulty string

const (
	DifficultyEasy   QuestDifficulty = "easy"
	DifficultyMedium QuestDifficulty = "medium"
	DifficultyHard   QuestDifficulty = "hard"
)

func (d QuestDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

type QuestStatus string

const (
	StatusPotential QuestStatus = "potential"
	StatusAccepted  QuestStatus = "accepted"
	StatusCompleted QuestStatus = "completed"
	StatusFailed    QuestStatus = "failed"
	StatusAbandoned QuestStatus = "abandoned"
	StatusDeclined  QuestStatus = "declined"
)

func (s QuestStatus) Valid() bool {
	switch s {
	case StatusPotential, StatusAccepted, StatusCompleted, StatusFailed, StatusAbandoned, StatusDeclined:
		return true
	}
	return false
}

// Terminal reports whether no further transition is legal from s.
func (s QuestStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusAbandoned, StatusDeclined:
		return true
	}
	return false
}

type FeedbackRating string

const (
	RatingThumbsUp   FeedbackRating = "thumbs_up"
	RatingThumbsDown FeedbackRating = "thumbs_down"
)

func (r FeedbackRating) Valid() bool {
	return r == RatingThumbsUp || r == RatingThumbsDown
}
