// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums

// RequestStatus values are wire strings consumed by the dashboard; keep them verbatim.
type RequestStatus string

const (
	RequestStatusPending    RequestStatus = "Pending"
	RequestStatusInProgress RequestStatus = "In Progress"
	RequestStatusCompleted  RequestStatus = "Completed"
	RequestStatusRejected   RequestStatus = "Rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusPending, RequestStatusInProgress, RequestStatusCompleted, RequestStatusRejected:
		return true
	}
	return false
}

type FileFilter string

const (
	FileFilterAll           FileFilter = "All"
	FileFilterMissingFiles  FileFilter = "MissingFiles"
	FileFilterOnlyCompleted FileFilter = "OnlyCompleted"
)
