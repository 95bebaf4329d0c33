package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sidequest-backend/internal/apierr"
	"github.com/yungbote/sidequest-backend/internal/logger"
	"github.com/yungbote/sidequest-backend/internal/services"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type DataEnvelope struct {
	Data any `json:"data"`
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, DataEnvelope{Data: payload})
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondServiceError maps typed service errors onto the HTTP surface.
// Anything unrecognized becomes a logged generic 500.
func RespondServiceError(c *gin.Context, log *logger.Logger, err error) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		RespondError(c, apiErr.Status, apiErr.Code, apiErr)
		return
	}

	var transitionErr *services.InvalidStatusTransitionError
	if errors.As(err, &transitionErr) {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS_TRANSITION", err)
		return
	}

	switch {
	case errors.Is(err, services.ErrValidation):
		RespondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err)
	case errors.Is(err, services.ErrNotFound):
		RespondError(c, http.StatusNotFound, "NOT_FOUND", err)
	case errors.Is(err, services.ErrUnauthorized):
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, services.ErrForbidden):
		// ownership failures surface as 401 with the ownership message
		RespondError(c, http.StatusUnauthorized, "FORBIDDEN", err)
	default:
		if log != nil {
			log.Error("Unhandled service error", "error", err)
		}
		RespondError(c, http.StatusInternalServerError, "INTERNAL", errors.New("internal server error"))
	}
}
