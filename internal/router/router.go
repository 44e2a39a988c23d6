// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/threedframe/threedframe-backend/internal/config"
	"github.com/threedframe/threedframe-backend/internal/handlers"
	"github.com/threedframe/threedframe-backend/internal/middleware"
	"github.com/threedframe/threedframe-backend/internal/services"
	"github.com/threedframe/threedframe-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize storage service")
	}

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	requestService := services.NewRequestService(db)
	modelService := services.NewModelService(db, storageService, cfg)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	requestHandler := handlers.NewRequestHandler(requestService)
	modelHandler := handlers.NewModelHandler(modelService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	limits := middleware.NewRateLimiters(cfg)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(limits.General)
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// The embed payload is read by viewers on arbitrary third-party sites, so
	// it gets its own wide-open CORS policy and no auth.
	embed := r.Group("/api/models/embed")
	embed.Use(middleware.EmbedCORS())
	{
		embed.GET("/:id", modelHandler.GetPublicModelData)
	}

	api := r.Group("/api")
	api.Use(middleware.CORS(cfg))
	{
		// User and auth routes
		users := api.Group("/users")
		{
			users.POST("", limits.Auth, authHandler.Register)
			users.POST("/login", limits.Auth, authHandler.Login)
			users.GET("/profile", middleware.AuthRequired(), authHandler.GetProfile)

			admin := users.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.GET("/all", userHandler.GetAllUsers)
				admin.GET("/:id", userHandler.GetUserDetails)
			}
		}

		// Request routes
		requests := api.Group("/requests")
		requests.Use(middleware.AuthRequired())
		{
			requests.POST("", requestHandler.CreateRequest)
			requests.GET("/my", requestHandler.GetMyRequests)
			requests.GET("/:id", requestHandler.GetRequest)

			admin := requests.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("", requestHandler.GetAllRequests)
				admin.PUT("/:id/status", requestHandler.UpdateRequestStatus)
			}
		}

		// Model routes
		mdls := api.Group("/models")
		mdls.Use(middleware.AuthRequired())
		{
			mdls.GET("/:id", modelHandler.GetModel)
			mdls.GET("/:id/embed-code", modelHandler.GetEmbedCode)

			admin := mdls.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.POST("/upload/:requestId", limits.Upload, modelHandler.UploadModel)
			}
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
