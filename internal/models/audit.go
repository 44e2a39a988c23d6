// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

type AuditLog struct {
	BaseModel
	UserID       *uuid.UUID `json:"userId" gorm:"type:uuid;index"`
	Action       string     `json:"action" gorm:"size:255;not null"`
	ResourceType string     `json:"resourceType" gorm:"size:50;index"`
	ResourceID   *uuid.UUID `json:"resourceId" gorm:"type:uuid"`
	IPAddress    string     `json:"ipAddress" gorm:"size:45"`
	UserAgent    string     `json:"userAgent" gorm:"size:500"`
	NewValues    JSONB      `json:"newValues" gorm:"type:jsonb"`
}
