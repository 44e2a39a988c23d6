// internal/models/request.go
package models

import (
	"github.com/google/uuid"
)

// Request is a user's submission asking for a 3D model to be produced.
//
// ModelID is only ever set together with Status = Completed (the upload path
// forces both in one transaction). The admin listing still has to cope with
// Completed rows that carry no model, which render as "Missing Files".
type Request struct {
	BaseModel
	OwnerID         uuid.UUID     `json:"-" gorm:"type:uuid;not null;index"`
	Title           string        `json:"title" gorm:"size:255;not null"`
	Description     string        `json:"description" gorm:"type:text;not null"`
	Specifications  string        `json:"specifications" gorm:"type:text;not null"`
	AdditionalNotes string        `json:"additionalNotes,omitempty" gorm:"type:text"`
	Status          RequestStatus `json:"status" gorm:"type:varchar(20);default:'Pending';index"`
	ModelID         *uuid.UUID    `json:"model,omitempty" gorm:"type:uuid"`

	// Relationships
	Owner User   `json:"user,omitempty" gorm:"foreignKey:OwnerID"`
	Model *Model `json:"modelFile,omitempty" gorm:"foreignKey:ModelID;references:ID"`
}
