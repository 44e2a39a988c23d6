// internal/handlers/user.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/threedframe/threedframe-backend/internal/services"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /api/users/all
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	filter := services.AdminUserFilter{
		PaginationParams: utils.GetPaginationParams(c),
		Role:             c.Query("filter"),
	}

	result, err := h.userService.ListUsers(filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SetPaginationHeaders(c, result.Pagination)
	utils.SuccessResponse(c, result)
}

// GET /api/users/:id
func (h *UserHandler) GetUserDetails(c *gin.Context) {
	userID, valid := parseEntityID(c.Param("id"))
	if !valid {
		utils.BadRequestResponse(c, "Invalid user ID", nil)
		return
	}

	user, err := h.userService.GetUserDetails(userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"user": user})
}
