package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/taskhub/task-manager-api/internal/config"
	"github.com/taskhub/task-manager-api/internal/constants"
	"github.com/taskhub/task-manager-api/internal/database"
	"github.com/taskhub/task-manager-api/internal/handlers"
	"github.com/taskhub/task-manager-api/internal/middleware"
	"github.com/taskhub/task-manager-api/internal/realtime"
	"github.com/taskhub/task-manager-api/internal/repository"
	"github.com/taskhub/task-manager-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations and seed the demo users
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.Seed(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	// Wire repositories, services and the notification hub
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notificationService := services.NewNotificationService(notificationRepo)
	hub := realtime.NewHub(notificationService)

	authService := services.NewAuthService(userRepo)
	userService := services.NewUserService(userRepo)
	taskService := services.NewTaskService(taskRepo, userRepo, hub)

	authHandler := handlers.NewAuthHandler(authService)
	taskHandler := handlers.NewTaskHandler(taskService)
	userHandler := handlers.NewUserHandler(userService)

	// Initialize Gin router
	r := gin.Default()

	// CORS for the SPA frontend
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSOrigins, ",")
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task Manager API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/username-check/:username", authHandler.UsernameCheck)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth())
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.POST("", taskHandler.CreateTask)
			tasks.PUT("", taskHandler.UpdateTask)
			tasks.DELETE("", taskHandler.DeleteTask)
		}

		// User routes (protected)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/details", userHandler.GetDetails)
			users.PUT("", userHandler.UpdateProfile)
			users.POST("/change-profile-picture", userHandler.ChangeProfilePicture)
		}
	}

	// Notification push channel
	r.GET("/ws/notifications", middleware.RequireAuth(), hub.HandleConnection)

	// Start server
	log.Printf("Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
