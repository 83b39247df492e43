package main

import (
	"fmt"
	"net/http"
	"os"

	"fitdesk/internal/config"
	"fitdesk/internal/database"
	"fitdesk/internal/handlers"
	"fitdesk/internal/logger"
	"fitdesk/internal/middleware"
	"fitdesk/internal/services"
	"fitdesk/internal/validator"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "fitdesk/internal/docs" // Import swagger docs
)

// @title           FitDesk API
// @version         1.0
// @description     FitDesk is a gym management backend covering member accounts, membership plans, subscriptions, and attendance tracking.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize database configuration
	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}

	// Create database manager
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}

	// Run migrations
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Register custom request validators
	validator.Register()

	// Initialize services
	db := dbManager.DB()
	subscriptionService := services.NewSubscriptionService(db)
	userService := services.NewUserService(db, subscriptionService)
	membershipService := services.NewMembershipService(db)
	attendanceService := services.NewAttendanceService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userService)
	userHandler := handlers.NewUserHandler(userService)
	membershipHandler := handlers.NewMembershipHandler(membershipService, userService)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService, userService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService, userService)

	// Initialize Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API v1 group
	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/signup", authHandler.Signup)
	auth.POST("/login", authHandler.Login)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	// User profile
	protected.GET("/profile", authHandler.GetProfile)

	// User administration routes
	users := protected.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser)
	users.DELETE("/:id", userHandler.RemoveUser)
	users.POST("/:id/roles", userHandler.AddRole)
	users.DELETE("/:id/roles/:role", userHandler.RemoveRole)

	// Membership template routes
	memberships := protected.Group("/memberships")
	memberships.POST("", membershipHandler.CreateMembership)
	memberships.GET("", membershipHandler.ListMemberships)
	memberships.GET("/:id", membershipHandler.GetMembership)
	memberships.PUT("/:id", membershipHandler.UpdateMembership)
	memberships.PATCH("/:id/status", membershipHandler.ToggleMembershipStatus)
	memberships.DELETE("/:id", membershipHandler.RemoveMembership)

	// Subscription routes
	subscriptions := protected.Group("/subscriptions")
	subscriptions.GET("", subscriptionHandler.ListSubscriptions)
	subscriptions.GET("/:id", subscriptionHandler.GetSubscription)
	subscriptions.PUT("/:id", subscriptionHandler.UpdateSubscription)
	subscriptions.DELETE("/:id", subscriptionHandler.RemoveSubscription)
	subscriptions.POST("/:id/activate", subscriptionHandler.ActivateSubscription)
	subscriptions.POST("/:id/deactivate", subscriptionHandler.DeactivateSubscription)
	subscriptions.POST("/:id/memberships", subscriptionHandler.AddMembershipToSubscription)
	subscriptions.GET("/user/:userId", subscriptionHandler.GetSubscriptionByUser)
	subscriptions.POST("/user/:userId", subscriptionHandler.CreateSubscriptionForUser)

	// Attendance routes
	attendances := protected.Group("/attendances")
	attendances.POST("/check-in", attendanceHandler.CheckIn)
	attendances.POST("/check-out/:userId", attendanceHandler.CheckOut)
	attendances.GET("/status/:userId", attendanceHandler.Status)

	log.Infof("Starting FitDesk backend server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}
