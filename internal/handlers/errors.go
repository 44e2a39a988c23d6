// internal/handlers/errors.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/threedframe/threedframe-backend/internal/services"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

// handleServiceError maps the service error taxonomy onto HTTP responses.
// Anything outside the taxonomy is an internal error and its details stay
// out of the response body.
func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.ErrorResponse(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	case errors.Is(err, services.ErrUnauthenticated):
		utils.UnauthorizedResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrStorage):
		utils.ErrorResponse(c, http.StatusBadGateway, "STORAGE_ERROR", "Failed to store uploaded files. Please retry the upload.", nil)
	default:
		utils.InternalErrorResponse(c, "")
	}
}
