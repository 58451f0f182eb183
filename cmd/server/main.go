package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/tsubakurame/team-todo-api/internal/config"
	"github.com/tsubakurame/team-todo-api/internal/constants"
	"github.com/tsubakurame/team-todo-api/internal/database"
	"github.com/tsubakurame/team-todo-api/internal/handlers"
	"github.com/tsubakurame/team-todo-api/internal/mailer"
	"github.com/tsubakurame/team-todo-api/internal/middleware"
	"github.com/tsubakurame/team-todo-api/internal/repository"
	"github.com/tsubakurame/team-todo-api/internal/services"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	store, err := redisStore.NewStore(
		10,              // Redis pool size
		"tcp",           // network type
		cfg.RedisAddr(), // Redis address from config
		"",              // username (empty for default user)
		cfg.RedisPassword,
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

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)

	// Outbound email
	mail := mailer.NewSMTPSender(cfg)

	// Services
	authService := services.NewAuthService(userRepo, orgRepo, tokenRepo, mail, cfg.AppBaseURL)
	orgService := services.NewOrganizationService(orgRepo, userRepo)
	invitationService := services.NewInvitationService(invitationRepo, userRepo, orgRepo, mail, cfg.AppBaseURL)
	todoService := services.NewTodoService(todoRepo, userRepo, notificationRepo)
	messageService := services.NewMessageService(todoRepo, mail)
	notificationService := services.NewNotificationService(notificationRepo, mail)
	motivationService := services.NewMotivationService(db, cfg.OpenAIAPIKey)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService, invitationService)
	todoHandler := handlers.NewTodoHandler(todoService)
	messageHandler := handlers.NewMessageHandler(messageService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	motivationHandler := handlers.NewMotivationHandler(motivationService)

	requireAuth := middleware.RequireAuth(userRepo)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Team Todo API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/request-code", authHandler.RequestCode)
			auth.POST("/verify-code", authHandler.VerifyCode)
			auth.GET("/callback", authHandler.Callback)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// User routes (protected)
		user := api.Group("/user")
		user.Use(requireAuth)
		{
			user.PATCH("", authHandler.UpdateProfile)
			user.PATCH("/password", authHandler.UpdatePassword)
		}

		// Organization routes
		org := api.Group("/org")
		{
			// Accepting an invitation works both anonymously and signed in;
			// the handler looks up the session itself.
			optionalAuth := middleware.OptionalAuth(userRepo)
			org.GET("/invite/accept", optionalAuth, orgHandler.AcceptInvitation)
			org.POST("/invite/accept", optionalAuth, orgHandler.AcceptInvitation)

			// Availability check is anonymous so sign-up forms can probe
			// slugs before a session exists.
			org.GET("/slug", orgHandler.CheckSlug)

			protected := org.Group("")
			protected.Use(requireAuth)
			{
				protected.GET("", orgHandler.GetOrganization)
				protected.PATCH("/slug", orgHandler.SetSlug)
				protected.GET("/by-slug/:slug", orgHandler.ResolveSlug)
				protected.POST("/invite", orgHandler.Invite)
				protected.GET("/invitations", orgHandler.ListInvitations)
				protected.POST("/invitations/:id/reinvite", orgHandler.Reinvite)
				protected.DELETE("/invitations/:id", orgHandler.DeleteInvitation)
				protected.GET("/members", orgHandler.ListMembers)
				protected.DELETE("/members/:id", orgHandler.RemoveMember)
			}
		}

		// Todo routes (protected)
		todos := api.Group("/todos")
		todos.Use(requireAuth)
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.GET("/:id", todoHandler.GetTodo)
			todos.PATCH("/:id", todoHandler.UpdateTodo)
			todos.DELETE("/:id", todoHandler.DeleteTodo)
			todos.GET("/:id/messages", messageHandler.ListMessages)
		}

		// Message routes (protected)
		api.POST("/messages", requireAuth, messageHandler.PostMessage)

		// Motivation (protected)
		api.GET("/motivation", requireAuth, motivationHandler.MessageOfTheDay)

		// Batch trigger, guarded by a shared secret instead of a session
		api.POST("/notifications/send-batch",
			middleware.RequireBatchSecret(cfg.BatchSecret),
			notificationHandler.SendBatch)
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
