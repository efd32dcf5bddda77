package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"vidaview/internal/app/access"
	"vidaview/internal/app/commands"
	"vidaview/internal/app/queries"
	"vidaview/internal/app/services/auth"
	"vidaview/internal/app/uow"
	"vidaview/internal/domain/shared/errs"
)

// statusFor maps an error kind onto its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, access.ErrUnauthenticated), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, commands.ErrNilBus), errors.Is(err, queries.ErrNilBus), errors.Is(err, uow.ErrUnitOfWorkMissing):
		return http.StatusServiceUnavailable
	}
	switch errs.KindOf(err) {
	case errs.ErrValidation:
		return http.StatusBadRequest
	case errs.ErrAuthorization:
		return http.StatusForbidden
	case errs.ErrNotFound:
		return http.StatusNotFound
	case errs.ErrConflict:
		return http.StatusConflict
	case errs.ErrInvalidTransition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "path", c.FullPath(), "error", err)
		}
		msg := "internal error"
		if status == http.StatusServiceUnavailable {
			msg = "service unavailable"
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
