package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
	"github.com/yungbote/sidequest-backend/internal/types"
)

const defaultVotingLimit = 5

type VotingHandler struct {
	log       *logger.Logger
	votingSvc services.VotingPoolService
}

func NewVotingHandler(log *logger.Logger, votingSvc services.VotingPoolService) *VotingHandler {
	handlerLog := log.With("handler", "VotingHandler")
	return &VotingHandler{log: handlerLog, votingSvc: votingSvc}
}

func limitParam(c *gin.Context, fallback int) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return fallback, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	return limit, nil
}

func (h *VotingHandler) GetQuests(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	limit, err := limitParam(c, defaultVotingLimit)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	templates, err := h.votingSvc.GetToVoteOn(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}

	dtos := make([]*TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, toTemplateDTO(template))
	}
	RespondOK(c, gin.H{"quest_templates": dtos})
}

type submitVoteRequest struct {
	QuestTemplateID uuid.UUID            `json:"quest_template_id" binding:"required"`
	Vote            types.FeedbackRating `json:"vote" binding:"required"`
}

func (h *VotingHandler) Vote(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	var req submitVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	vote, err := h.votingSvc.SubmitVote(c.Request.Context(), rd.UserID, req.QuestTemplateID, req.Vote)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"vote": toVoteDTO(vote)})
}

func (h *VotingHandler) MyVotes(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	limit, err := limitParam(c, 50)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	votes, err := h.votingSvc.MyVotes(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}

	dtos := make([]*VoteDTO, 0, len(votes))
	for _, vote := range votes {
		dtos = append(dtos, toVoteDTO(vote))
	}
	RespondOK(c, gin.H{"votes": dtos})
}

func (h *VotingHandler) Stats(c *gin.Context) {
	templateID, err := uuid.Parse(c.Param("template_id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", fmt.Errorf("template_id must be a UUID"))
		return
	}

	stats, err := h.votingSvc.Stats(c.Request.Context(), templateID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, stats)
}
