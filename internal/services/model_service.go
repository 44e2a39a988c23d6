// internal/services/model_service.go
package services

import (
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/config"
	"github.com/threedframe/threedframe-backend/internal/database"
	"github.com/threedframe/threedframe-backend/internal/models"
)

type ModelService struct {
	db      *gorm.DB
	storage FileStorage
	cfg     *config.Config
}

func NewModelService(db *gorm.DB, storage FileStorage, cfg *config.Config) *ModelService {
	return &ModelService{
		db:      db,
		storage: storage,
		cfg:     cfg,
	}
}

// UploadModel stores the asset bundle and completes the request in one unit:
// either the model row exists, the request points at it and its status is
// Completed, or nothing changed at all. Assets go to storage first; any
// storage failure rolls back nothing in the database because the database has
// not been touched yet, and already-stored objects are discarded best-effort.
func (s *ModelService) UploadModel(requestID uuid.UUID, actorID uuid.UUID, glb, usdz, poster *multipart.FileHeader) (*models.Model, error) {
	actor, err := s.findUser(actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can upload models", ErrForbidden)
	}

	if glb == nil || usdz == nil {
		return nil, fmt.Errorf("%w: both GLB and USDZ files are required", ErrValidation)
	}

	var request models.Request
	if err := s.db.First(&request, requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: request %s", ErrNotFound, requestID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var storedKeys []string
	discard := func() {
		for _, key := range storedKeys {
			if err := s.storage.DeleteFile(key); err != nil {
				logrus.WithError(err).WithField("key", key).Warn("Failed to discard stored asset")
			}
		}
	}

	glbResult, err := s.storeAsset(glb, "glb")
	if err != nil {
		return nil, err
	}
	storedKeys = append(storedKeys, glbResult.Key)

	usdzResult, err := s.storeAsset(usdz, "usdz")
	if err != nil {
		discard()
		return nil, err
	}
	storedKeys = append(storedKeys, usdzResult.Key)

	var posterResult *UploadResult
	if poster != nil {
		posterResult, err = s.storeAsset(poster, "poster")
		if err != nil {
			discard()
			return nil, err
		}
		storedKeys = append(storedKeys, posterResult.Key)
	}

	model := &models.Model{
		RequestID: request.ID,
		GlbFile:   glbResult.URL,
		GlbKey:    glbResult.Key,
		UsdzFile:  usdzResult.URL,
		UsdzKey:   usdzResult.Key,
	}
	if posterResult != nil {
		model.PosterImage = posterResult.URL
		model.PosterKey = posterResult.Key
	}

	var replaced *models.Model
	err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if err := tx.Set("gorm:query_option", "FOR UPDATE").First(&request, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: request %s", ErrNotFound, requestID)
			}
			return fmt.Errorf("database error: %w", err)
		}

		// A re-upload replaces the prior model outright, no versioning.
		var prior models.Model
		if err := tx.Where("request_id = ?", request.ID).First(&prior).Error; err == nil {
			if err := tx.Unscoped().Delete(&prior).Error; err != nil {
				return fmt.Errorf("failed to replace prior model: %w", err)
			}
			replaced = &prior
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to create model: %w", err)
		}

		updates := map[string]interface{}{
			"model_id": model.ID,
			"status":   models.RequestStatusCompleted,
		}
		if err := tx.Model(&request).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to complete request: %w", err)
		}

		return nil
	})
	if err != nil {
		discard()
		return nil, err
	}

	// Old asset locators are discarded, not retained for audit.
	if replaced != nil {
		go func(m models.Model) {
			for _, key := range []string{m.GlbKey, m.UsdzKey, m.PosterKey} {
				if key == "" {
					continue
				}
				if err := s.storage.DeleteFile(key); err != nil {
					logrus.WithError(err).WithField("key", key).Warn("Failed to delete replaced asset")
				}
			}
		}(*replaced)
	}

	return model, nil
}

func (s *ModelService) storeAsset(header *multipart.FileHeader, kind string) (*UploadResult, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s file: %v", ErrStorage, kind, err)
	}
	defer file.Close()

	result, err := s.storage.UploadFile(file, header, GetModelUploadOptions(kind))
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetModel returns the full model record to the request owner or an admin.
func (s *ModelService) GetModel(modelID uuid.UUID, actorID uuid.UUID) (*models.Model, error) {
	actor, err := s.findUser(actorID)
	if err != nil {
		return nil, err
	}

	model, err := s.findModel(modelID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdmin {
		var request models.Request
		if err := s.db.First(&request, model.RequestID).Error; err != nil {
			return nil, fmt.Errorf("database error: %w", err)
		}
		if request.OwnerID != actor.ID {
			return nil, fmt.Errorf("%w: not the owner of this model", ErrForbidden)
		}
	}

	return model, nil
}

// GetPublicModelData resolves the anonymous embed payload: asset locators
// only. This is the single unauthenticated read path, embedded viewers on
// third-party sites depend on it.
func (s *ModelService) GetPublicModelData(modelID uuid.UUID) (*models.PublicModelData, error) {
	model, err := s.findModel(modelID)
	if err != nil {
		return nil, err
	}

	return &models.PublicModelData{
		GlbFile:     model.GlbFile,
		UsdzFile:    model.UsdzFile,
		PosterImage: model.PosterImage,
	}, nil
}

func (s *ModelService) GetEmbedCode(modelID uuid.UUID, actorID uuid.UUID) (string, error) {
	model, err := s.GetModel(modelID, actorID)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(
		`<iframe src="%s/embed/%s" width="600" height="500" frameborder="0" allow="autoplay; fullscreen; xr-spatial-tracking" allowfullscreen></iframe>`,
		s.cfg.Frontend.BaseURL, model.ID,
	), nil
}

func (s *ModelService) findModel(modelID uuid.UUID) (*models.Model, error) {
	var model models.Model
	if err := s.db.First(&model, modelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: model %s", ErrNotFound, modelID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &model, nil
}

func (s *ModelService) findUser(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}
