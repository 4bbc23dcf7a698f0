package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"drawbit/internal/service"
)

// HandleServiceError 把 Service 层返回的错误映射为 HTTP 响应
func HandleServiceError(c *gin.Context, err error) {
	if field := service.ValidationField(err); field != "" {
		ValidationErrorResponse(c, field, err.Error())
		return
	}
	switch {
	case errors.Is(err, service.ErrAuthenticationFailed):
		ErrorResponse(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, service.ErrRegistrationFailed):
		ErrorResponse(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrNothingToExport):
		ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, ErrInvalidCanvasUpload):
		ErrorResponse(c, http.StatusBadRequest, err.Error())
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Unhandled internal server error")
		ErrorResponse(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
