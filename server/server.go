// Package server exposes the Persistence Service and the Completion Service
// over HTTP.
//
//	srv := server.New(&cfg, remote.NewBackendStore(backend), completer)
//	err := srv.Listen()
package server

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/observability"
	"github.com/tailored-agentic-units/planner/remote"
)

// Route paths.
const (
	DraftPath  = "/api/itinerary"
	HealthPath = "/health"
)

// Option configures a Server.
type Option func(*Server)

// WithObserver overrides the default SlogObserver.
func WithObserver(o observability.Observer) Option {
	return func(s *Server) { s.observer = o }
}

// WithAccessLog toggles the request logging middleware.
func WithAccessLog(enabled bool) Option {
	return func(s *Server) { s.accessLog = enabled }
}

// Server is the planner HTTP service.
type Server struct {
	app       *fiber.App
	cfg       Config
	store     remote.Store
	completer completion.Completer
	observer  observability.Observer
	accessLog bool
}

// New creates a Server over store and completer and mounts its routes.
func New(cfg *Config, store remote.Store, completer completion.Completer, opts ...Option) *Server {
	s := &Server{
		cfg:       *cfg,
		store:     store,
		completer: completer,
		observer:  observability.NewSlogObserver(slog.Default()),
		accessLog: true,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.app = fiber.New(fiber.Config{
		AppName:      "planner",
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: 2 * time.Minute,
		BodyLimit:    10 * 1024 * 1024,
	})
	s.routes()
	return s
}

func (s *Server) routes() {
	s.app.Use(recover.New())
	if s.accessLog {
		s.app.Use(logger.New())
	}

	if s.cfg.Metrics {
		name := s.cfg.MetricsName
		if name == "" {
			name = defaultMetricsName
		}
		prom := fiberprometheus.New(name)
		prom.RegisterAt(s.app, "/metrics")
		s.app.Use(prom.Middleware)
	}

	origins := s.cfg.AllowOrigins
	if origins == "" {
		origins = defaultAllowOrigins
	}
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept",
		AllowCredentials: !strings.Contains(origins, "*"),
	}))

	s.app.Get(HealthPath, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy", "timestamp": time.Now().Format(time.RFC3339)})
	})

	store := &storeHandler{store: s.store, observer: s.observer}
	s.app.All(remote.StorePath, store.Handle)

	chat := &chatHandler{completer: s.completer, observer: s.observer}
	s.app.All(completion.ChatPath, postOnly(chat.Complete))
	s.app.All(DraftPath, postOnly(chat.Draft))
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on the configured address until Shutdown.
func (s *Server) Listen() error {
	addr := s.cfg.Addr
	if addr == "" {
		addr = defaultAddr
	}
	return s.app.Listen(addr)
}

// Shutdown stops the server, waiting for in-flight requests until ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func postOnly(h fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodPost {
			return methodNotAllowed(c)
		}
		return h(c)
	}
}

func methodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
}
