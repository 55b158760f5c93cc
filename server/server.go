package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"tenderlink/database"
	"tenderlink/internal/config"
	"tenderlink/server/middleware"
)

// Server HTTP-сервер аналитики над результатами конвейера
type Server struct {
	cfg    *config.Config
	store  *database.Store
	logger *slog.Logger
	engine *gin.Engine
}

// New создает сервер и регистрирует маршруты
func New(cfg *config.Config, store *database.Store, logger *slog.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CORS())
	engine.Use(middleware.Logger(logger))
	engine.Use(middleware.RateLimit(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst))

	s := &Server{
		cfg:    cfg,
		store:  store,
		logger: logger,
		engine: engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.GET("/stats/overview", s.handleOverview)
		api.GET("/stats/record-types", s.handleCountBy("record_type"))
		api.GET("/stats/link-types", s.handleCountBy("link_type"))
		api.GET("/stats/llm-layers", s.handleCountBy("llm_layer"))
		api.GET("/stats/trend", s.handleTrend)
		api.GET("/stats/customers", s.handleTopCustomers)
		api.GET("/projects", s.handleListProjects)
		api.GET("/projects/:id/timeline", s.handleProjectTimeline)
		api.GET("/link-pairs", s.handleLinkPairs)
	}
}

// Engine возвращает gin-движок, пригодно для httptest
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Run запускает сервер на настроенном порту
func (s *Server) Run() error {
	addr := ":" + s.cfg.Server.Port
	s.logger.Info("сервер аналитики запущен", "addr", addr)
	return s.engine.Run(addr)
}
