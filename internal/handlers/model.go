// internal/handlers/model.go
package handlers

import (
	"mime/multipart"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/threedframe/threedframe-backend/internal/services"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type ModelHandler struct {
	modelService *services.ModelService
}

func NewModelHandler(modelService *services.ModelService) *ModelHandler {
	return &ModelHandler{modelService: modelService}
}

// POST /api/models/upload/:requestId
func (h *ModelHandler) UploadModel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, valid := parseEntityID(c.Param("requestId"))
	if !valid {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	glb := formFile(c, "glbFile")
	usdz := formFile(c, "usdzFile")
	poster := formFile(c, "posterImage")

	model, err := h.modelService.UploadModel(requestID, userID, glb, usdz, poster)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": "Model files uploaded successfully. The request has been marked as completed.",
		"model":   model,
	})
}

// GET /api/models/:id
func (h *ModelHandler) GetModel(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	modelID, valid := parseEntityID(c.Param("id"))
	if !valid {
		utils.BadRequestResponse(c, "Invalid model ID", nil)
		return
	}

	model, err := h.modelService.GetModel(modelID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"model": model})
}

// GET /api/models/:id/embed-code
func (h *ModelHandler) GetEmbedCode(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	modelID, valid := parseEntityID(c.Param("id"))
	if !valid {
		utils.BadRequestResponse(c, "Invalid model ID", nil)
		return
	}

	embedCode, err := h.modelService.GetEmbedCode(modelID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"embedCode": embedCode})
}

// GET /api/models/embed/:id (anonymous)
func (h *ModelHandler) GetPublicModelData(c *gin.Context) {
	modelID, valid := parseEntityID(c.Param("id"))
	if !valid {
		utils.BadRequestResponse(c, "Invalid model ID", nil)
		return
	}

	data, err := h.modelService.GetPublicModelData(modelID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, data)
}

// parseEntityID normalizes a path identifier at the boundary. Clients have
// been observed sending a serialized object (e.g. "[object Object]") where an
// id belongs; anything that is not a plain UUID becomes a validation error
// here instead of leaking into the services.
func parseEntityID(raw string) (uuid.UUID, bool) {
	raw = strings.TrimSpace(raw)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func formFile(c *gin.Context, field string) *multipart.FileHeader {
	file, err := c.FormFile(field)
	if err != nil {
		return nil
	}
	return file
}
