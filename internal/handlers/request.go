// internal/handlers/request.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/threedframe/threedframe-backend/internal/models"
	"github.com/threedframe/threedframe-backend/internal/services"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type RequestHandler struct {
	requestService *services.RequestService
}

func NewRequestHandler(requestService *services.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

// POST /api/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var input services.CreateRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, err := h.requestService.CreateRequest(userID, &input)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"request": request})
}

// GET /api/requests/my
func (h *RequestHandler) GetMyRequests(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requests, err := h.requestService.ListOwnerRequests(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"requests": requests})
}

// GET /api/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	request, err := h.requestService.GetRequest(requestID, userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"request": request})
}

// GET /api/requests
func (h *RequestHandler) GetAllRequests(c *gin.Context) {
	filter := services.AdminRequestFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Status:           models.RequestStatus(c.DefaultQuery("status", "All")),
		FileFilter:       models.FileFilter(c.DefaultQuery("fileFilter", "All")),
	}

	result, err := h.requestService.ListAdminRequests(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, result.Pagination)
	utils.SuccessResponse(c, result)
}

// PUT /api/requests/:id/status
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid request ID", nil)
		return
	}

	var body struct {
		Status models.RequestStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	request, err := h.requestService.UpdateRequestStatus(requestID, userID, body.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"request": request})
}
