// internal/services/user_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/models"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type UserService struct {
	db *gorm.DB
}

// AdminUserFilter narrows the admin user listing; Role is "admin", "user" or
// empty for everyone.
type AdminUserFilter struct {
	utils.PaginationParams
	Role string `json:"role,omitempty"`
}

type AdminUserList struct {
	Users      []models.User    `json:"users"`
	Pagination utils.Pagination `json:"pagination"`
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) ListUsers(filter AdminUserFilter) (*AdminUserList, error) {
	query := s.db.Model(&models.User{})

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", searchTerm, searchTerm)
	}

	switch filter.Role {
	case "admin":
		query = query.Where("is_admin = ?", true)
	case "user":
		query = query.Where("is_admin = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}

	query = utils.ApplySort(query, filter.Sort)
	query = utils.ApplyPagination(query, filter.Page)

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}

	return &AdminUserList{
		Users:      users,
		Pagination: utils.NewPagination(filter.Page, total),
	}, nil
}

// GetUserDetails returns a user together with their requests, newest first.
func (s *UserService) GetUserDetails(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.Preload("Requests", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at DESC").Order("id ASC").Preload("Model")
	}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
