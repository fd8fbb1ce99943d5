package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/aitracker-project/aitracker-server/internal/api/handlers"
	"github.com/aitracker-project/aitracker-server/internal/api/middleware"
	"github.com/aitracker-project/aitracker-server/internal/config"
	"github.com/aitracker-project/aitracker-server/internal/database"
	"github.com/aitracker-project/aitracker-server/internal/database/queries"
	"github.com/aitracker-project/aitracker-server/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Parse command line flags
	var setup bool
	var version bool
	flag.BoolVar(&setup, "setup", false, "Run setup wizard")
	flag.BoolVar(&version, "version", false, "Show version information")
	flag.Parse()

	if version {
		fmt.Printf("AI Tracker Server v0.1.0\n")
		fmt.Printf("Login-gated tracker for AI agent websites\n")
		return
	}

	if setup {
		if err := config.RunSetupWizard(); err != nil {
			fmt.Fprintf(os.Stderr, "Setup failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Session settings
	middleware.JWTSecret = cfg.JWTSecret
	middleware.SessionTTL = cfg.SessionTTL

	// Connect to database and bootstrap the schema
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := db.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap schema")
	}

	// Initialize queries
	userQueries := queries.NewUserQueries(db.DB)
	entryQueries := queries.NewEntryQueries(db.DB)

	// Create the default admin account on first run
	if err := userQueries.EnsureDefaultAdmin(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure default admin")
	}

	// Two-step confirmation state for destructive actions
	confirms := services.NewConfirmGuard()

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(userQueries, confirms)
	entryHandler := handlers.NewEntryHandler(entryQueries, confirms)
	userHandler := handlers.NewUserHandler(userQueries, confirms, cfg.AdminUsername)
	statsHandler := handlers.NewStatsHandler(entryQueries, userQueries)

	// Setup router
	router := gin.Default()
	router.Use(middleware.CORSMiddleware())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// API routes
	api := router.Group("/api/v1")
	{
		api.POST("/auth/login", authHandler.Login)

		// Authenticated routes
		authed := api.Group("/")
		authed.Use(middleware.RequireAuth())
		{
			authed.POST("/auth/logout", authHandler.Logout)
			authed.GET("/auth/verify", authHandler.Verify)

			authed.GET("/entries", entryHandler.ListEntries)
			authed.POST("/entries", entryHandler.CreateEntry)
			authed.GET("/entries/:id", entryHandler.GetEntry)
			authed.PUT("/entries/:id", entryHandler.UpdateEntry)
			authed.POST("/entries/:id/delete", entryHandler.DeleteEntry)

			authed.GET("/stats/summary", statsHandler.GetSummary)
		}

		// Admin routes
		admin := api.Group("/admin")
		admin.Use(middleware.RequireAdmin())
		{
			admin.GET("/users", userHandler.ListUsers)
			admin.POST("/users", userHandler.CreateUser)
			admin.PUT("/users/:id/password", userHandler.ChangePassword)
			admin.POST("/users/:id/delete", userHandler.DeleteUser)
		}
	}

	// Start server
	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	log.Info().Str("addr", addr).Msg("AI Tracker server starting")

	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
