// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/libreshelf/library-backend/internal/config"
	"github.com/libreshelf/library-backend/internal/handlers"
	"github.com/libreshelf/library-backend/internal/middleware"
	"github.com/libreshelf/library-backend/internal/services"
	"github.com/libreshelf/library-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)

	authService := services.NewAuthService(db, cfg, notificationService)
	userService := services.NewUserService(db, storageService)
	genreService := services.NewGenreService(db)
	bookService := services.NewBookService(db, storageService)
	orderService := services.NewOrderService(db, notificationService)
	adminService := services.NewAdminService(db, notificationService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	genreHandler := handlers.NewGenreHandler(genreService)
	bookHandler := handlers.NewBookHandler(bookService)
	orderHandler := handlers.NewOrderHandler(orderService)
	adminHandler := handlers.NewAdminHandler(adminService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/forgot-password", authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/verify-email", authHandler.VerifyEmail)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetCurrentUser)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/:id", userHandler.GetPublicProfile)

			// Authenticated user routes
			protected := users.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.PUT("/profile", userHandler.UpdateProfile)
				protected.POST("/avatar", middleware.UploadRateLimit(), userHandler.UploadAvatar)
				protected.DELETE("/account", userHandler.DeleteAccount)
			}
		}

		// Genre routes
		genres := v1.Group("/genres")
		{
			genres.GET("", genreHandler.GetGenres)
			genres.GET("/:id", genreHandler.GetGenre)

			// Staff-only routes
			staff := genres.Group("")
			staff.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				staff.POST("", genreHandler.CreateGenre)
				staff.PUT("/:id", genreHandler.UpdateGenre)
				staff.DELETE("/:id", genreHandler.DeleteGenre)
			}
		}

		// Book routes
		books := v1.Group("/books")
		{
			books.GET("", bookHandler.GetBooks)
			books.GET("/:id", bookHandler.GetBook)

			// Staff-only routes
			staff := books.Group("")
			staff.Use(middleware.AuthRequired(), middleware.StaffRequired())
			{
				staff.POST("", bookHandler.CreateBook)
				staff.PUT("/:id", bookHandler.UpdateBook)
				staff.DELETE("/:id", bookHandler.DeleteBook)
				staff.POST("/:id/cover", middleware.UploadRateLimit(), bookHandler.UploadCover)
			}
		}

		// Order routes
		orders := v1.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.POST("/:id/advance", orderHandler.AdvanceOrder)
			orders.DELETE("/:id", orderHandler.DeleteOrder)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			// User management
			adminUsers := admin.Group("/users")
			{
				adminUsers.GET("", adminHandler.GetUsers)
				adminUsers.POST("", adminHandler.CreateStaffUser)
				adminUsers.PUT("/:id/status", adminHandler.UpdateUserStatus)
			}

			// Notifications
			adminNotifications := admin.Group("/notifications")
			{
				adminNotifications.GET("", adminHandler.GetNotifications)
				adminNotifications.PUT("/:id/read", adminHandler.MarkNotificationRead)
			}

			// Audit trail
			admin.GET("/audit-logs", adminHandler.GetAuditLogs)
		}

		// Staff circulation overview
		staffOrders := v1.Group("/staff/orders")
		staffOrders.Use(middleware.AuthRequired(), middleware.StaffRequired())
		{
			staffOrders.GET("", orderHandler.SearchOrders)
		}
	}

	// Static file serving (for development)
	if cfg.Environment == "development" {
		r.Static("/uploads", "./uploads")
	}

	return r
}
