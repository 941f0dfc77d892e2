package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"

	"github.com/sipalaciosv/inspeccion-vehicular/config"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	config     *config.Config
	httpServer *http.Server
	log        *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(
	cfg *config.Config,
	log *logrus.Logger,
	nrApp *newrelic.Application,
	handler *Handler,
	userRepo repository.UserRepository,
) *Server {
	gin.SetMode(cfg.Server.Mode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(Logger(log))
	router.Use(Metrics())
	router.Use(CORS(cfg.Server.CorsWhiteList))

	if nrApp != nil {
		router.Use(NewRelicMiddleware(nrApp))
	}

	setupRoutes(router, handler, userRepo)

	return &Server{
		router: router,
		config: cfg,
		log:    log,
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: router,
		},
	}
}

// setupRoutes sets up all the routes for the server
func setupRoutes(r *gin.Engine, h *Handler, userRepo repository.UserRepository) {
	// Operational endpoints, unauthenticated
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", h.Metrics)

	api := r.Group("/api/v1")
	api.Use(Authenticate(userRepo))

	api.GET("/catalog", h.Catalog)

	checklists := api.Group("/checklists")
	checklists.POST("", h.SubmitChecklist)
	checklists.GET("", h.ListChecklists)
	checklists.GET("/findings", h.VehicleFindingsReport)
	checklists.GET("/search", h.SearchChecklists)
	checklists.GET("/:id", h.GetChecklist)

	fatigue := api.Group("/fatigue")
	fatigue.POST("", h.SubmitFatigue)
	fatigue.GET("", h.ListFatigue)
	fatigue.GET("/:id", h.GetFatigue)

	api.GET("/drivers", h.ListDrivers)
	api.GET("/vehicles", h.ListVehicles)
	api.GET("/vehicles/by-number/:number", h.GetVehicleByNumber)

	// Review and registry management require the admin role
	admin := api.Group("")
	admin.Use(RequireRole(model.RoleAdmin))

	admin.POST("/checklists/:id/approve", h.ApproveChecklist)
	admin.POST("/checklists/:id/reject", h.RejectChecklist)
	admin.POST("/fatigue/:id/approve", h.ApproveFatigue)
	admin.POST("/fatigue/:id/reject", h.RejectFatigue)

	admin.POST("/drivers", h.CreateDriver)
	admin.PUT("/drivers/:id", h.UpdateDriver)
	admin.DELETE("/drivers/:id", h.DeleteDriver)
	admin.POST("/vehicles", h.CreateVehicle)
	admin.PUT("/vehicles/:id", h.UpdateVehicle)
	admin.DELETE("/vehicles/:id", h.DeleteVehicle)
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Infof("Starting server on port %d", s.config.Server.Port)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
