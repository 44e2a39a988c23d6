// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/config"
	"github.com/threedframe/threedframe-backend/internal/models"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	TokenType string       `json:"tokenType"`
	ExpiresIn int          `json:"expiresIn"` // in seconds
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{
		db:  db,
		cfg: cfg,
	}
}

// Register creates a regular account. Admin accounts are only ever seeded or
// promoted out of band, never self-registered.
func (s *AuthService) Register(req *RegisterRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var existingUser models.User
	if err := s.db.Where("email = ?", req.Email).First(&existingUser).Error; err == nil {
		return nil, fmt.Errorf("%w: user with this email already exists", ErrValidation)
	}

	user := &models.User{
		Name:    req.Name,
		Email:   req.Email,
		IsAdmin: false,
	}

	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.buildAuthResponse(user)
}

func (s *AuthService) Login(req *LoginRequest) (*AuthResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	var user models.User
	if err := s.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", ErrUnauthenticated)
	}

	return s.buildAuthResponse(&user)
}

func (s *AuthService) GetProfile(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user %s", ErrNotFound, userID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &user, nil
}

func (s *AuthService) buildAuthResponse(user *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateJWT(user.ID, user.Name, user.IsAdmin, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &AuthResponse{
		User:      user,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: s.cfg.JWT.AccessTokenTTL * 3600,
	}, nil
}
