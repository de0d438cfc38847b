package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/floristportal/internal/adapter/shopify"
	domainErrors "github.com/polkiloo/floristportal/internal/domain/errors"
	"github.com/polkiloo/floristportal/internal/domain/model"
	pkgAuth "github.com/polkiloo/floristportal/internal/pkg/auth"
	"github.com/polkiloo/floristportal/internal/server/http/middleware"
	"github.com/polkiloo/floristportal/internal/worker"
)

// CurrentActor extracts the authenticated actor from context. Requests that
// reach a handler without one are treated as the system.
func CurrentActor(c *gin.Context) model.Actor {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		return model.Actor{Role: model.RoleSystem}
	}
	return actor
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	var limited shopify.TooManyRequestsError
	switch {
	case errors.Is(err, domainErrors.ErrInvalidInput),
		errors.Is(err, domainErrors.ErrInvalidStatus),
		errors.Is(err, domainErrors.ErrInvalidZoneRange),
		errors.Is(err, domainErrors.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrInvalidCredentials),
		errors.Is(err, domainErrors.ErrInvalidSignature),
		errors.Is(err, pkgAuth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrAlreadyExists),
		errors.Is(err, domainErrors.ErrOrderCancelled),
		errors.Is(err, domainErrors.ErrShopNotConnected),
		errors.Is(err, worker.ErrSyncInProgress):
		return http.StatusConflict
	case errors.As(err, &limited):
		return http.StatusTooManyRequests
	case errors.Is(err, domainErrors.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as JSON. Internal errors are logged and hidden.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			slog.String("path", c.FullPath()),
			slog.String("error", err.Error()),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
