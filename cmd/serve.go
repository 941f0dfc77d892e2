package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/api"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/cache"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/db"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/elasticsearch"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/media"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/messagebus"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/service"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Run: func(cmd *cobra.Command, args []string) {
		// Load configuration
		cfg, err := config.Load()
		if err != nil {
			logrus.Fatalf("Failed to load configuration: %v", err)
		}

		// Setup logger
		logger := logrus.New()
		if cfg.Logging.JSON {
			logger.SetFormatter(&logrus.JSONFormatter{})
		} else {
			logger.SetFormatter(&logrus.TextFormatter{
				FullTimestamp: true,
			})
		}

		level, err := logrus.ParseLevel(cfg.Logging.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		logger.SetLevel(level)

		// Initialize New Relic
		nrApp, err := telemetry.InitNewRelic(&cfg.NewRelic)
		if err != nil {
			logger.Warnf("Failed to initialize New Relic: %v", err)
		}

		// Connect to database
		dbConn, err := db.Connect(&cfg.Database)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}

		// Run migrations
		if err := db.Migrate(dbConn); err != nil {
			logger.Fatalf("Failed to run database migrations: %v", err)
		}

		// Initialize cache
		cacheClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}

		// Initialize message bus
		messageBusClient := messagebus.NewNoopClient()
		if cfg.MessageBus.Enabled && cfg.MessageBus.ConnectionString != "" {
			messageBusClient, err = messagebus.NewClient(&cfg.MessageBus)
			if err != nil {
				logger.Fatalf("Failed to initialize message bus: %v", err)
			}
		}

		// Initialize search index
		searchClient := elasticsearch.NewNoopClient()
		if cfg.Elasticsearch.Enabled {
			searchClient, err = elasticsearch.NewClient(&cfg.Elasticsearch)
			if err != nil {
				logger.Fatalf("Failed to connect to Elasticsearch: %v", err)
			}
		}

		// Initialize media storage
		mediaStore, err := media.NewMinioStore(&cfg.Media)
		if err != nil {
			logger.Fatalf("Failed to initialize media storage: %v", err)
		}

		// Create repositories
		counterRepo := repository.NewCounterRepository(dbConn)
		inspectionRepo := repository.NewInspectionRepository(dbConn)
		fatigueRepo := repository.NewFatigueRepository(dbConn)
		driverRepo := repository.NewDriverRepository(dbConn)
		vehicleRepo := repository.NewVehicleRepository(dbConn)
		userRepo := repository.NewUserRepository(dbConn)

		// Create services
		checklistService := service.NewChecklistService(
			inspectionRepo,
			vehicleRepo,
			counterRepo,
			cacheClient,
			searchClient,
			mediaStore,
		)
		fatigueService := service.NewFatigueService(
			fatigueRepo,
			counterRepo,
			cacheClient,
			mediaStore,
		)
		reviewService := service.NewReviewService(
			inspectionRepo,
			fatigueRepo,
			userRepo,
			cacheClient,
			messageBusClient,
			cfg.MessageBus.ERPQueue,
		)
		registryService := service.NewRegistryService(
			driverRepo,
			vehicleRepo,
			cacheClient,
		)

		// Create API handler and server
		handler := api.NewHandler(
			checklistService,
			fatigueService,
			reviewService,
			registryService,
			logger,
		)
		server := api.NewServer(cfg, logger, nrApp, handler, userRepo)

		// Start server in a goroutine
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				logger.Fatalf("Failed to start server: %v", err)
			}
		}()

		// Wait for interrupt signal
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		// Shutdown gracefully
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		logger.Info("Shutting down server...")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Fatalf("Server shutdown failed: %v", err)
		}

		if err := messageBusClient.Close(shutdownCtx); err != nil {
			logger.Fatalf("Message bus closure failed: %v", err)
		}

		logger.Info("Server shutdown complete")
	},
}
