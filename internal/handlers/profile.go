package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
	"github.com/yungbote/sidequest-backend/internal/types"
)

type ProfileHandler struct {
	log        *logger.Logger
	profileSvc services.UserProfileService
}

func NewProfileHandler(log *logger.Logger, profileSvc services.UserProfileService) *ProfileHandler {
	handlerLog := log.With("handler", "ProfileHandler")
	return &ProfileHandler{log: handlerLog, profileSvc: profileSvc}
}

type profileUpdateRequest struct {
	Categories           *[]types.QuestCategory `json:"categories"`
	Difficulty           *types.QuestDifficulty `json:"difficulty"`
	MaxTime              *int                   `json:"maxTime"`
	AdditionalNotes      *string                `json:"additionalNotes"`
	NotificationsEnabled *bool                  `json:"notificationsEnabled"`
	NotificationTime     *string                `json:"notificationTime"`
	Timezone             *string                `json:"timezone"`
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	profile, err := h.profileSvc.GetOrCreate(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toProfileDTO(profile))
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	profile, err := h.profileSvc.Update(c.Request.Context(), rd.UserID, services.ProfileUpdate{
		Categories:           req.Categories,
		Difficulty:           req.Difficulty,
		MaxTime:              req.MaxTime,
		AdditionalNotes:      req.AdditionalNotes,
		NotificationsEnabled: req.NotificationsEnabled,
		NotificationTime:     req.NotificationTime,
		Timezone:             req.Timezone,
	})
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toProfileDTO(profile))
}

func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	profile, err := h.profileSvc.MarkOnboardingCompleted(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toProfileDTO(profile))
}

func (h *ProfileHandler) LocalTime(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	localNow := h.profileSvc.LocalNow(c.Request.Context(), rd.UserID)
	RespondOK(c, gin.H{"localTime": localNow.Format(time.RFC3339)})
}
