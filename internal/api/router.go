package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/leozw/launchpad/internal/api/handlers"
	"github.com/leozw/launchpad/internal/api/middleware"
	"github.com/leozw/launchpad/internal/config"
	"github.com/leozw/launchpad/internal/customers"
)

type Server struct {
	Config *config.Config
	Router *gin.Engine
}

func NewServer(cfg *config.Config, h *handlers.Handler, customerSvc *customers.Service, logger *zap.Logger) *Server {
	gin.SetMode(cfg.Server.Mode)
	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())

	server := &Server{
		Config: cfg,
		Router: router,
	}

	server.setupRoutes(h, customerSvc)
	return server
}

func (s *Server) setupRoutes(h *handlers.Handler, customerSvc *customers.Service) {
	s.Router.GET("/health", handlers.HealthCheck)
	s.Router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Registration happens before a token exists.
	s.Router.POST("/api/v1/customers", h.RegisterCustomer)

	// API routes (protected)
	api := s.Router.Group("/api/v1")
	api.Use(middleware.AuthRequired(s.Config.Auth.JWTSecret, customerSvc))

	{
		api.GET("/projects", h.ListProjects)
		api.POST("/projects", h.CreateProject)
		api.GET("/projects/:id", h.GetProject)
		api.PUT("/projects/:id", h.UpdateProject)
		api.DELETE("/projects/:id", h.DeleteProject)
		api.POST("/projects/:id/deploy", h.DeployProject)
		api.GET("/projects/:id/deployments", h.ListDeployments)
		api.GET("/projects/:id/deployments/:deployment_id", h.GetDeployment)
		api.POST("/projects/:id/domains/verify", h.VerifyProjectDomains)
	}

	// Side tables consumed by the execution fabric; same addressing scheme,
	// independent of project lifecycle.
	{
		api.PUT("/scripts/:script_id/limits", h.SetDispatchLimits)
		api.GET("/scripts/:script_id/limits", h.GetDispatchLimits)
		api.PUT("/scripts/:script_id/outbound", h.SetOutboundRoute)
		api.GET("/scripts/:script_id/outbound", h.GetOutboundRoute)
	}
}
