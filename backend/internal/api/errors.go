package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"chirp/backend/internal/constants"
	apperrors "chirp/backend/pkg/errors"
)

// respondError maps domain errors onto HTTP statuses. Unknown errors are logged and hidden.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperrors.IsInvalidArgument(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperrors.IsForbidden(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request timed out"})
	default:
		h.log.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pagination reads skip and limit. Negative values pass through so the core rejects them;
// limit is capped at the configured maximum.
func (h *Handler) pagination(c *gin.Context) (int, int, bool) {
	skip, ok := h.queryInt(c, "skip", 0)
	if !ok {
		return 0, 0, false
	}
	limit, ok := h.queryInt(c, "limit", constants.DefaultPageSize)
	if !ok {
		return 0, 0, false
	}
	if h.opts.MaxPageSize > 0 && limit > h.opts.MaxPageSize {
		limit = h.opts.MaxPageSize
	}
	return skip, limit, true
}

func (h *Handler) queryInt(c *gin.Context, key string, def int) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": key + " must be an integer"})
		return 0, false
	}
	return n, true
}
