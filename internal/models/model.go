// internal/models/model.go
package models

import (
	"github.com/google/uuid"
)

// Model is the uploaded asset bundle fulfilling a request: a GLB for the web
// viewer, a USDZ for AR quick-look on iOS and an optional poster image.
// Rows are created by the upload path and never mutated afterwards; a
// re-upload replaces the whole row.
type Model struct {
	BaseModel
	RequestID   uuid.UUID `json:"request" gorm:"type:uuid;not null;uniqueIndex"`
	GlbFile     string    `json:"glbFile" gorm:"size:1024;not null"`
	UsdzFile    string    `json:"usdzFile" gorm:"size:1024;not null"`
	PosterImage string    `json:"posterImage,omitempty" gorm:"size:1024"`

	// Storage keys kept so a replaced upload can discard its old objects.
	GlbKey    string `json:"-" gorm:"size:512"`
	UsdzKey   string `json:"-" gorm:"size:512"`
	PosterKey string `json:"-" gorm:"size:512"`
}

// PublicModelData is the anonymous embed payload: asset locators only, no
// request or owner information.
type PublicModelData struct {
	GlbFile     string `json:"glbFile"`
	UsdzFile    string `json:"usdzFile"`
	PosterImage string `json:"posterImage,omitempty"`
}
