package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
)

type BoardHandler struct {
	log      *logger.Logger
	boardSvc services.QuestBoardService
}

func NewBoardHandler(log *logger.Logger, boardSvc services.QuestBoardService) *BoardHandler {
	handlerLog := log.With("handler", "BoardHandler")
	return &BoardHandler{log: handlerLog, boardSvc: boardSvc}
}

func (h *BoardHandler) NeedsRefresh(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	needs, err := h.boardSvc.NeedsRefresh(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"needs_refresh": needs})
}

func (h *BoardHandler) GetBoard(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	board, err := h.boardSvc.GetRefreshed(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toBoardDTO(board))
}

func (h *BoardHandler) RefreshBoard(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	board, err := h.boardSvc.Refresh(c.Request.Context(), rd.UserID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, toBoardDTO(board))
}
