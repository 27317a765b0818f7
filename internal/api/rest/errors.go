package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-sale-ledger/internal/api/shared/errors"
	"github.com/feral-file/ff-sale-ledger/internal/logger"
)

// respondBadRequest responds with a bad request error
func respondBadRequest(c *gin.Context, message string, details ...string) {
	c.JSON(http.StatusBadRequest, errors.NewBadRequestError(message, details...))
}

// respondValidationError responds with a validation error
func respondValidationError(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errors.NewValidationError(message))
}

// respondUnauthorized responds when no caller identity is attached to the request
func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, errors.NewUnauthorizedError("Authentication required"))
}

// respondError maps a ledger or validation error to its response; anything else is logged as internal
func respondError(c *gin.Context, err error, fields ...zap.Field) {
	status, apiErr, known := errors.FromError(err)
	if !known {
		logger.ErrorCtx(c.Request.Context(), err, fields...)
	}
	c.JSON(status, apiErr)
}
