package handlers

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/sidequest-backend/internal/services"
	"github.com/yungbote/sidequest-backend/internal/types"
)

// The wire vocabulary is camelCase; everything below converts from the
// snake_case internal models at the boundary.

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Email     *string   `json:"email,omitempty"`
	FullName  string    `json:"fullName,omitempty"`
	IsAdmin   bool      `json:"isAdmin"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(user *types.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:        user.ID,
		Email:     user.Email,
		FullName:  user.FullName,
		IsAdmin:   user.IsAdmin,
		Anonymous: user.AppleSub == nil,
		CreatedAt: user.CreatedAt,
	}
}

type ProfileDTO struct {
	ID                   uuid.UUID             `json:"id"`
	UserID               uuid.UUID             `json:"userId"`
	Categories           []types.QuestCategory `json:"categories"`
	Difficulty           types.QuestDifficulty `json:"difficulty"`
	MaxTime              int                   `json:"maxTime"`
	AdditionalNotes      string                `json:"additionalNotes"`
	NotificationsEnabled bool                  `json:"notificationsEnabled"`
	NotificationTime     string                `json:"notificationTime"`
	Timezone             string                `json:"timezone"`
	OnboardingCompleted  bool                  `json:"onboardingCompleted"`
	CreatedAt            time.Time             `json:"createdAt"`
	UpdatedAt            time.Time             `json:"updatedAt"`
}

func toProfileDTO(profile *types.UserProfile) *ProfileDTO {
	if profile == nil {
		return nil
	}
	return &ProfileDTO{
		ID:                   profile.ID,
		UserID:               profile.UserID,
		Categories:           profile.ParsedCategories(),
		Difficulty:           profile.Difficulty,
		MaxTime:              profile.MaxTime,
		AdditionalNotes:      profile.AdditionalNotes,
		NotificationsEnabled: profile.NotificationsEnabled,
		NotificationTime:     profile.NotificationTime,
		Timezone:             profile.Timezone,
		OnboardingCompleted:  profile.OnboardingCompleted,
		CreatedAt:            profile.CreatedAt,
		UpdatedAt:            profile.UpdatedAt,
	}
}

type QuestDTO struct {
	ID              uuid.UUID             `json:"id"`
	QuestBoardID    *uuid.UUID            `json:"questBoardId,omitempty"`
	QuestTemplateID uuid.UUID             `json:"questTemplateId"`
	Text            string                `json:"text"`
	Category        types.QuestCategory   `json:"category"`
	Difficulty      types.QuestDifficulty `json:"difficulty"`
	EstimatedTime   string                `json:"estimatedTime"`
	Tags            []string              `json:"tags"`
	Status          types.QuestStatus     `json:"status"`
	AcceptedAt      *time.Time            `json:"acceptedAt,omitempty"`
	CompletedAt     *time.Time            `json:"completedAt,omitempty"`
	FailedAt        *time.Time            `json:"failedAt,omitempty"`
	AbandonedAt     *time.Time            `json:"abandonedAt,omitempty"`
	DeclinedAt      *time.Time            `json:"declinedAt,omitempty"`
	FeedbackRating  *types.FeedbackRating `json:"feedbackRating,omitempty"`
	FeedbackComment *string               `json:"feedbackComment,omitempty"`
	TimeSpent       *int                  `json:"timeSpent,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
}

func toQuestDTO(quest *types.UserQuest) *QuestDTO {
	if quest == nil {
		return nil
	}
	dto := &QuestDTO{
		ID:              quest.ID,
		QuestBoardID:    quest.QuestBoardID,
		QuestTemplateID: quest.QuestTemplateID,
		Text:            quest.DisplayText(),
		Status:          quest.Status,
		AcceptedAt:      quest.AcceptedAt,
		CompletedAt:     quest.CompletedAt,
		FailedAt:        quest.FailedAt,
		AbandonedAt:     quest.AbandonedAt,
		DeclinedAt:      quest.DeclinedAt,
		FeedbackRating:  quest.FeedbackRating,
		FeedbackComment: quest.FeedbackComment,
		TimeSpent:       quest.TimeSpent,
		CreatedAt:       quest.CreatedAt,
	}
	if quest.Template != nil {
		dto.Category = quest.Template.Category
		dto.Difficulty = quest.Template.Difficulty
		dto.EstimatedTime = quest.Template.EstimatedTime
		dto.Tags = decodeTags(quest.Template.Tags)
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	return dto
}

type BoardDTO struct {
	ID            uuid.UUID   `json:"id"`
	LastRefreshed time.Time   `json:"lastRefreshed"`
	IsActive      bool        `json:"isActive"`
	Quests        []*QuestDTO `json:"quests"`
}

func toBoardDTO(bw *services.BoardWithQuests) *BoardDTO {
	if bw == nil || bw.Board == nil {
		return nil
	}
	quests := make([]*QuestDTO, 0, len(bw.Quests))
	for _, quest := range bw.Quests {
		quests = append(quests, toQuestDTO(quest))
	}
	return &BoardDTO{
		ID:            bw.Board.ID,
		LastRefreshed: bw.Board.LastRefreshed,
		IsActive:      bw.Board.IsActive,
		Quests:        quests,
	}
}

type TemplateDTO struct {
	ID            uuid.UUID             `json:"id"`
	Text          string                `json:"text"`
	Category      types.QuestCategory   `json:"category"`
	Difficulty    types.QuestDifficulty `json:"difficulty"`
	EstimatedTime string                `json:"estimatedTime"`
	Tags          []string              `json:"tags"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toTemplateDTO(template *types.QuestTemplate) *TemplateDTO {
	if template == nil {
		return nil
	}
	tags := decodeTags(template.Tags)
	if tags == nil {
		tags = []string{}
	}
	return &TemplateDTO{
		ID:            template.ID,
		Text:          template.Text,
		Category:      template.Category,
		Difficulty:    template.Difficulty,
		EstimatedTime: template.EstimatedTime,
		Tags:          tags,
		CreatedAt:     template.CreatedAt,
	}
}

type VoteDTO struct {
	ID              uuid.UUID            `json:"id"`
	QuestTemplateID uuid.UUID            `json:"questTemplateId"`
	Vote            types.FeedbackRating `json:"vote"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

func toVoteDTO(vote *types.QuestTemplateVote) *VoteDTO {
	if vote == nil {
		return nil
	}
	return &VoteDTO{
		ID:              vote.ID,
		QuestTemplateID: vote.QuestTemplateID,
		Vote:            vote.Vote,
		UpdatedAt:       vote.UpdatedAt,
	}
}

func decodeTags(raw []byte) []string {
	if len(raw) == 0 {
		return nil
	}
	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return nil
	}
	return tags
}
