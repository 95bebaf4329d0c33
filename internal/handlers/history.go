package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
)

type HistoryHandler struct {
	log        *logger.Logger
	historySvc services.HistoryService
}

func NewHistoryHandler(log *logger.Logger, historySvc services.HistoryService) *HistoryHandler {
	handlerLog := log.With("handler", "HistoryHandler")
	return &HistoryHandler{log: handlerLog, historySvc: historySvc}
}

func (h *HistoryHandler) Stats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	stats, err := h.historySvc.Stats(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, stats)
}

func (h *HistoryHandler) SevenDay(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	history, err := h.historySvc.SevenDayHistory(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"history": history})
}
