// internal/services/request_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/database"
	"github.com/threedframe/threedframe-backend/internal/models"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type RequestService struct {
	db *gorm.DB
}

type CreateRequestInput struct {
	Title           string `json:"title" validate:"required,notblank,max=255"`
	Description     string `json:"description" validate:"required,notblank"`
	Specifications  string `json:"specifications" validate:"required,notblank"`
	AdditionalNotes string `json:"additionalNotes,omitempty"`
}

// AdminRequestFilter is the caller-supplied query configuration for the admin
// listing. Every call is pure given its filter, there is no ambient paging
// state on the service.
type AdminRequestFilter struct {
	utils.PaginationParams
	Status     models.RequestStatus `json:"status,omitempty"`
	FileFilter models.FileFilter    `json:"fileFilter,omitempty"`
}

type RequestStats struct {
	Total      int64 `json:"total"`
	Pending    int64 `json:"pending"`
	InProgress int64 `json:"inProgress"`
	Completed  int64 `json:"completed"`
	Rejected   int64 `json:"rejected"`
}

type AdminRequestList struct {
	Requests   []models.Request `json:"requests"`
	Pagination utils.Pagination `json:"pagination"`
	Stats      RequestStats     `json:"stats"`
}

func NewRequestService(db *gorm.DB) *RequestService {
	return &RequestService{db: db}
}

func (s *RequestService) CreateRequest(ownerID uuid.UUID, input *CreateRequestInput) (*models.Request, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, ownerID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	request := &models.Request{
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     strings.TrimSpace(input.Description),
		Specifications:  strings.TrimSpace(input.Specifications),
		AdditionalNotes: strings.TrimSpace(input.AdditionalNotes),
		Status:          models.RequestStatusPending,
	}

	if err := s.db.Create(request).Error; err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	request.Owner = owner
	return request, nil
}

func (s *RequestService) GetRequest(requestID uuid.UUID, actorID uuid.UUID) (*models.Request, error) {
	actor, err := s.findUser(actorID)
	if err != nil {
		return nil, err
	}

	var request models.Request
	if err := s.db.Preload("Owner").Preload("Model").First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.IsAdmin && request.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: not the owner of this request", ErrForbidden)
	}

	return &request, nil
}

// ListOwnerRequests returns every request the user has created, oldest first.
func (s *RequestService) ListOwnerRequests(ownerID uuid.UUID) ([]models.Request, error) {
	var requests []models.Request
	if err := s.db.Where("owner_id = ?", ownerID).
		Preload("Model").
		Order("created_at ASC").Order("id ASC").
		Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	return requests, nil
}

// UpdateRequestStatus sets any of the four statuses regardless of the current
// one. The product offers every status in the admin dropdown at all times, so
// no transition table is enforced beyond the admin gate.
func (s *RequestService) UpdateRequestStatus(requestID uuid.UUID, actorID uuid.UUID, status models.RequestStatus) (*models.Request, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	actor, err := s.findUser(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can change a request's status", ErrForbidden)
	}

	var request models.Request
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", ErrNotFound, requestID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Model(&request).Update("status", status).Error; err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Owner").Preload("Model").First(&request, requestID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &request, nil
}

func (s *RequestService) ListAdminRequests(filter AdminRequestFilter) (*AdminRequestList, error) {
	query := s.filteredQuery(filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	query = utils.ApplySort(query, filter.Sort)
	query = utils.ApplyPagination(query, filter.Page)

	var requests []models.Request
	if err := query.Preload("Owner").Preload("Model").Find(&requests).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch requests: %w", err)
	}

	stats, err := s.requestStats(total)
	if err != nil {
		return nil, err
	}

	return &AdminRequestList{
		Requests:   requests,
		Pagination: utils.NewPagination(filter.Page, total),
		Stats:      *stats,
	}, nil
}

func (s *RequestService) filteredQuery(filter AdminRequestFilter) *gorm.DB {
	query := s.db.Model(&models.Request{})

	if filter.Search != "" {
		searchTerm := "%" + strings.ToLower(filter.Search) + "%"
		query = query.
			Joins("LEFT JOIN users ON users.id = requests.owner_id").
			Where("LOWER(requests.title) LIKE ? OR LOWER(requests.description) LIKE ? OR LOWER(users.name) LIKE ?",
				searchTerm, searchTerm, searchTerm)
	}

	if filter.Status != "" && filter.Status != "All" {
		query = query.Where("requests.status = ?", filter.Status)
	}

	switch filter.FileFilter {
	case models.FileFilterMissingFiles:
		// Completed without an upload is the integrity-violation case the
		// dashboard renders as "Missing Files".
		query = query.Where("requests.status = ? AND requests.model_id IS NULL", models.RequestStatusCompleted)
	case models.FileFilterOnlyCompleted:
		query = query.Where("requests.model_id IS NOT NULL")
	}

	return query
}

// requestStats counts every status over the whole table so the dashboard
// cards keep their totals while the table itself is narrowed by filters.
// Total reflects the filtered set and is passed in by the caller.
func (s *RequestService) requestStats(total int64) (*RequestStats, error) {
	stats := &RequestStats{Total: total}

	counts := []struct {
		status models.RequestStatus
		dest   *int64
	}{
		{models.RequestStatusPending, &stats.Pending},
		{models.RequestStatusInProgress, &stats.InProgress},
		{models.RequestStatusCompleted, &stats.Completed},
		{models.RequestStatusRejected, &stats.Rejected},
	}

	for _, c := range counts {
		if err := s.db.Model(&models.Request{}).Where("status = ?", c.status).Count(c.dest).Error; err != nil {
			return nil, fmt.Errorf("failed to count %s requests: %w", c.status, err)
		}
	}

	return stats, nil
}

func (s *RequestService) findUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
