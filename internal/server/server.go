// Package server assembles the engine, the service registry, and the
// HTTP/WebSocket surface the host connects to.
package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saftree/storagebridge/internal/api/middleware"
	"github.com/saftree/storagebridge/internal/config"
	"github.com/saftree/storagebridge/internal/logging"
	"github.com/saftree/storagebridge/internal/monitoring"
	"github.com/saftree/storagebridge/internal/providers"
	"github.com/saftree/storagebridge/internal/service"
	"github.com/saftree/storagebridge/internal/storage"
	"github.com/saftree/storagebridge/internal/ws"
	"go.uber.org/zap"
)

// Server wraps the HTTP server and the assembled engine.
type Server struct {
	router    *gin.Engine
	registry  *service.Registry
	scheduler *storage.Scheduler
	watcher   *storage.Watcher
	log       *logging.Logger
}

// Options carries the platform collaborators the host supplies. Zero
// values are honest defaults for a plain host: no grants, no structured
// volume list.
type Options struct {
	Grants storage.GrantRegistry
	Source storage.VolumeSource
}

// New assembles the engine and the router.
func New(cfg *config.Config, log *logging.Logger, opts Options) (*Server, error) {
	if log == nil {
		log = logging.NewDefault()
	}
	grants := opts.Grants
	if grants == nil {
		grants = storage.NoGrants{}
	}

	metrics := monitoring.NewMetrics()
	cache := storage.NewResolverCache()
	scheduler := storage.NewScheduler(cfg.Storage.QueueSize, metrics, log.Component("scheduler"))

	enum := storage.NewEnumerator(opts.Source, grants, cfg.Storage.MountBases, cfg.Storage.PrimaryPath, log.Component("roots"))
	native := storage.NewNativeWalker(log.Component("native"))
	saf := storage.NewSafWalker(log.Component("saf"))
	resolver := storage.NewResolver(grants, cache, cfg.Storage.MountBases, log.Component("resolver"))
	resolver.SetStats(metrics)

	watcher, err := storage.NewWatcher(cfg.Storage.MountBases, cache, log.Component("watcher"))
	if err != nil {
		scheduler.Close()
		return nil, err
	}

	registry := service.NewRegistry()
	storageProvider := providers.NewStorage(enum, native, saf, resolver, grants, scheduler)
	if err := registry.Register(storageProvider); err != nil {
		scheduler.Close()
		_ = watcher.Close()
		return nil, err
	}
	stats := registry.Stats()
	log.Info("services registered",
		zap.Int("services", stats["total_services"]),
		zap.Int("tools", stats["total_tools"]))

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(metrics.Middleware())
	if cfg.RateLimit.Enabled {
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	h := newHandlers(registry, log.Component("http"))
	wsHandler := ws.NewHandler(watcher, metrics, log.Component("ws"))

	router.GET("/", h.Root)
	router.GET("/health", h.Health)
	router.GET("/roots", h.Roots)
	router.GET("/services", h.ListServices)
	router.POST("/services/execute", h.ExecuteService)
	router.GET("/stream", wsHandler.HandleConnection)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		router:    router,
		registry:  registry,
		scheduler: scheduler,
		watcher:   watcher,
		log:       log,
	}, nil
}

// Run starts the server and blocks.
func (s *Server) Run(addr string) error {
	s.log.Info("listening", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Close drains the scheduler and stops the watcher.
func (s *Server) Close() error {
	s.scheduler.Close()
	return s.watcher.Close()
}
