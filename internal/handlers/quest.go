package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/repos"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
	"github.com/yungbote/sidequest-backend/internal/types"
)

// statusActions maps the path action segment onto the target quest status.
var statusActions = map[string]types.QuestStatus{
	"accept":   types.StatusAccepted,
	"complete": types.StatusCompleted,
	"abandon":  types.StatusAbandoned,
	"decline":  types.StatusDeclined,
	"fail":     types.StatusFailed,
}

type QuestHandler struct {
	log       *logger.Logger
	questRepo repos.UserQuestRepo
	lifecycle services.QuestLifecycleService
}

func NewQuestHandler(log *logger.Logger, questRepo repos.UserQuestRepo, lifecycle services.QuestLifecycleService) *QuestHandler {
	handlerLog := log.With("handler", "QuestHandler")
	return &QuestHandler{log: handlerLog, questRepo: questRepo, lifecycle: lifecycle}
}

type questFeedbackRequest struct {
	Rating    *types.FeedbackRating `json:"rating"`
	Comment   *string               `json:"comment"`
	TimeSpent *int                  `json:"timeSpent"`
}

type questStatusRequest struct {
	QuestID  uuid.UUID             `json:"quest_id" binding:"required"`
	Feedback *questFeedbackRequest `json:"feedback"`
}

func (h *QuestHandler) UpdateStatus(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	action := c.Param("action")
	newStatus, ok := statusActions[action]
	if !ok {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("unknown status action %q", action))
		return
	}

	var req questStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	quest, err := h.questRepo.GetByID(c.Request.Context(), nil, req.QuestID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	if quest == nil {
		RespondServiceError(c, h.log, fmt.Errorf("%w: quest %s", services.ErrNotFound, req.QuestID))
		return
	}
	if quest.UserID != rd.UserID {
		RespondServiceError(c, h.log, fmt.Errorf("%w: quest %s belongs to another user", services.ErrForbidden, req.QuestID))
		return
	}

	var feedback *services.QuestFeedback
	if req.Feedback != nil {
		feedback = &services.QuestFeedback{
			Rating:    req.Feedback.Rating,
			Comment:   req.Feedback.Comment,
			TimeSpent: req.Feedback.TimeSpent,
		}
	}

	updated, err := h.lifecycle.Transition(c.Request.Context(), nil, req.QuestID, newStatus, feedback)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toQuestDTO(updated))
}
