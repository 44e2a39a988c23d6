// internal/services/service_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/threedframe/threedframe-backend/internal/config"
	"github.com/threedframe/threedframe-backend/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	// A named shared-cache database keeps the schema visible across pooled
	// connections while staying isolated per test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Request{}, &models.Model{}))
	return db
}

func newTestConfig() *config.Config {
	return &config.Config{
		Environment: "test",
		JWT: config.JWTConfig{
			SecretKey:      "test-secret",
			AccessTokenTTL: 1,
		},
		Frontend: config.FrontendConfig{
			BaseURL: "https://viewer.example.com",
		},
	}
}

func createTestUser(t *testing.T, db *gorm.DB, name string, isAdmin bool) *models.User {
	user := &models.User{
		Name:    name,
		Email:   fmt.Sprintf("%s@example.com", strings.ToLower(strings.ReplaceAll(name, " ", "."))),
		IsAdmin: isAdmin,
	}
	require.NoError(t, user.SetPassword("Sup3rSecret!"))
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestRequest(t *testing.T, db *gorm.DB, owner *models.User, title string, createdAt time.Time) *models.Request {
	request := &models.Request{
		OwnerID:        owner.ID,
		Title:          title,
		Description:    "A model of " + title,
		Specifications: "10cm tall, low poly",
		Status:         models.RequestStatusPending,
	}
	require.NoError(t, db.Create(request).Error)
	require.NoError(t, db.Model(request).Update("created_at", createdAt).Error)
	request.CreatedAt = createdAt
	return request
}

func requestIDs(requests []models.Request) []uuid.UUID {
	ids := make([]uuid.UUID, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	return ids
}
