package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/requestdata"
	"github.com/yungbote/sidequest-backend/internal/services"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
	boardSvc    services.QuestBoardService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService, boardSvc services.QuestBoardService) *AuthHandler {
	handlerLog := log.With("handler", "AuthHandler")
	return &AuthHandler{log: handlerLog, authService: authService, boardSvc: boardSvc}
}

type anonymousSigninRequest struct {
	DeviceUUID string `json:"device_uuid" binding:"required"`
}

type appleIDToken struct {
	IdentityToken string `json:"identityToken" binding:"required"`
	FullName      string `json:"fullName"`
}

type appleSigninRequest struct {
	AppleIDToken appleIDToken `json:"appleIdToken" binding:"required"`
}

type signinResponse struct {
	AccessToken string   `json:"access_token"`
	User        *UserDTO `json:"user"`
}

func (h *AuthHandler) AnonymousSignin(c *gin.Context) {
	var req anonymousSigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	token, user, err := h.authService.AnonymousSignin(c.Request.Context(), req.DeviceUUID)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, signinResponse{AccessToken: token, User: toUserDTO(user)})
}

func (h *AuthHandler) AppleSignin(c *gin.Context) {
	var req appleSigninRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
		return
	}

	token, user, err := h.authService.AppleSignin(c.Request.Context(), req.AppleIDToken.IdentityToken, req.AppleIDToken.FullName)
	if err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, signinResponse{AccessToken: token, User: toUserDTO(user)})
}

func (h *AuthHandler) DeleteMe(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())

	if err := h.boardSvc.Deactivate(c.Request.Context(), rd.UserID); err != nil {
		h.log.Warn("Board deactivation during account delete failed", "user_id", rd.UserID, "error", err)
	}
	if err := h.authService.DeleteUser(c.Request.Context(), rd.UserID); err != nil {
		RespondServiceError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
