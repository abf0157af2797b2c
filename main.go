package main

import (
	"log"
	"os"
	"time"

	"groupeval/database"
	"groupeval/handlers"
	"groupeval/handlers/admin"
	"groupeval/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	validateEnvironment()

	// Initialize database
	database.InitDB()

	// Wire handlers to the database
	handlers.InitHandlers()

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    8 * 1024 * 1024, // 8MB, photo uploads included
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))

	// CORS configuration
	corsOrigins := os.Getenv("CORS_ORIGINS")
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))

	// Apply rate limiting to all routes
	app.Use(middleware.RateLimitMiddleware())

	// Serve the frontend and uploaded images
	app.Static("/", "./static")
	app.Static("/uploads", uploadDir())

	// Realtime vote updates
	app.Use("/ws", handlers.WebSocketUpgrade)
	app.Get("/ws", handlers.VoteChannel)

	// API Routes
	api := app.Group("/api")

	// Public voting flow
	api.Post("/verify-voter", handlers.VerifyVoter)
	api.Post("/vote", handlers.SubmitVote)
	api.Get("/ranking", handlers.GetRanking)

	// Public reads
	api.Get("/courses/active", handlers.GetActiveCourse)
	api.Get("/groups", handlers.GetGroups)
	api.Get("/groups/:id", handlers.GetGroup)
	api.Get("/groups/:id/stats", handlers.GetGroupStats)
	api.Get("/groups/:id/members", handlers.GetGroupMembers)
	api.Get("/groups/:id/photos", handlers.GetGroupPhotos)
	api.Get("/roles", handlers.GetRoles)

	// Admin authentication
	adminGroup := api.Group("/admin")
	adminGroup.Post("/login", middleware.LoginRateLimitMiddleware(), admin.Login)
	adminGroup.Post("/logout", admin.Logout)

	adminProtected := adminGroup.Group("")
	adminProtected.Use(middleware.AdminAuthMiddleware)
	adminProtected.Get("/verify", admin.VerifyToken)

	// Admin mutations (token required)
	authed := api.Group("")
	authed.Use(middleware.AdminAuthMiddleware)

	// Course management
	authed.Get("/courses", handlers.GetCourses)
	authed.Post("/courses", handlers.CreateCourse)
	authed.Put("/courses/:id", handlers.UpdateCourse)
	authed.Delete("/courses/:id", handlers.DeleteCourse)
	authed.Post("/courses/:id/activate", handlers.ActivateCourse)

	// Group management
	authed.Post("/groups", handlers.CreateGroup)
	authed.Put("/groups/:id", handlers.UpdateGroup)
	authed.Delete("/groups/:id", handlers.DeleteGroup)
	authed.Post("/groups/:id/lock", handlers.LockGroup)

	// Role management
	authed.Post("/roles", handlers.CreateRole)
	authed.Delete("/roles/:id", handlers.DeleteRole)

	// Member management
	authed.Post("/groups/:id/members", handlers.AddGroupMember)
	authed.Put("/members/:id", handlers.UpdateMember)
	authed.Delete("/members/:id", handlers.DeleteMember)

	// Voter management
	authed.Get("/voters", handlers.GetVoters)
	authed.Post("/voters", handlers.CreateVoter)
	authed.Put("/voters/:id", handlers.UpdateVoter)
	authed.Delete("/voters/:id", handlers.DeleteVoter)

	// Vote corrections
	authed.Get("/votes", handlers.GetVotes)
	authed.Put("/votes/batch", handlers.BatchUpdateVotes)
	authed.Put("/votes/:id", handlers.UpdateVote)
	authed.Delete("/votes/:id", handlers.DeleteVote)

	// Uploads and photos
	authed.Post("/upload", handlers.UploadFile)
	authed.Post("/groups/:id/photos", handlers.AddGroupPhoto)
	authed.Delete("/photos/:id", handlers.DeleteGroupPhoto)

	// Demo data
	authed.Post("/init-data", handlers.InitData)

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().Unix(),
			"version":   "1.0.0",
		})
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	log.Printf("🚀 HTTP server starting on port %s", port)
	log.Printf("📊 Environment: %s", getEnv("APP_ENV", "development"))
	log.Printf("🌐 WebSocket available at ws://localhost:%s/ws", port)

	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start HTTP server:", err)
	}
}

// validateEnvironment checks for required environment variables
func validateEnvironment() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("FATAL: JWT_SECRET environment variable must be set. Generate one with: openssl rand -base64 64")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("FATAL: JWT_SECRET must be at least 32 characters long")
	}

	if os.Getenv("ADMIN_PASSWORD_HASH") == "" && os.Getenv("ADMIN_PASSWORD") == "" {
		log.Fatal("FATAL: set ADMIN_PASSWORD_HASH (bcrypt) or ADMIN_PASSWORD")
	}

	if os.Getenv("APP_ENV") == "production" {
		corsOrigins := os.Getenv("CORS_ORIGINS")
		if corsOrigins == "" || corsOrigins == "http://localhost:3000" {
			log.Println("WARNING: CORS_ORIGINS not properly configured for production")
		}
	}
}

func uploadDir() string {
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		return dir
	}
	return "./static/uploads"
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Don't expose internal errors in production
	if os.Getenv("APP_ENV") == "production" && code == 500 {
		message = "An error occurred. Please try again later."
	}

	return c.Status(code).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
