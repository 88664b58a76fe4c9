package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	swagger "github.com/gofiber/swagger"
	"github.com/harborline/partner-survey/internal/config"
	"github.com/harborline/partner-survey/internal/database"
	"github.com/harborline/partner-survey/internal/handlers"
	"github.com/harborline/partner-survey/internal/middleware"
	"github.com/harborline/partner-survey/internal/types"
	"github.com/joho/godotenv"

	_ "github.com/harborline/partner-survey/docs/api" // Swagger docs
)

// @title Partner Survey API
// @version 1.0.0
// @description Partner-facing customer survey administration service
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/harborline/partner-survey

// @license.name AGPL-3.0
// @license.url https://www.gnu.org/licenses/agpl-3.0.html

// @host localhost:3000
// @BasePath /api
// @schemes http https

func main() {
	// Load .env if present, real environment wins
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler:          customErrorHandler,
		DisableStartupMessage: false,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())

	// Prometheus metrics
	prometheus := fiberprometheus.New("partnersurvey")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// API routes under /api
	api := app.Group("/api")

	// Version middleware
	api.Use(middleware.VersionMiddleware())

	// Create handlers
	templateHandler := &handlers.TemplateHandler{DB: db}
	customerHandler := &handlers.CustomerHandler{DB: db}
	surveyHandler := &handlers.SurveyHandler{DB: db}
	exportHandler := &handlers.ExportHandler{DB: db}

	// Template routes
	api.Get("/templates", templateHandler.ListTemplates)
	api.Post("/templates/parse", templateHandler.ParseTemplate)
	api.Post("/templates", templateHandler.SaveTemplate)
	api.Get("/templates/:name", templateHandler.GetTemplate)

	// Customer lookup
	api.Get("/customers", customerHandler.SearchCustomers)

	// Survey routes
	api.Get("/surveys/:template/existing", surveyHandler.GetExisting)
	api.Post("/surveys/:template/submissions", surveyHandler.SubmitSurvey)

	// Export
	api.Get("/export", exportHandler.ExportResponses)

	// 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":    fiber.StatusNotFound,
			"message":   "[404] Resource Not Found",
			"ok":        false,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"url":       c.OriginalURL(),
		})
	})

	// Graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		log.Println("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	// Start server
	port := cfg.Port
	log.Printf("Starting server on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Println("Server stopped")
}

// customErrorHandler handles errors globally
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := err.Error()
	errorType := "unknown"

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Check for a typed service error
	if ce, ok := err.(*types.CustomError); ok {
		code = ce.Code
		message = ce.Message
		errorType = ce.Type
	}

	return c.Status(code).JSON(fiber.Map{
		"status":    code,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}
