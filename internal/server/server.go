package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/dukerupert/famdo/internal/backup"
	"github.com/dukerupert/famdo/internal/coordinator"
	"github.com/dukerupert/famdo/internal/handler"
	"github.com/dukerupert/famdo/internal/metrics"
	"github.com/dukerupert/famdo/internal/middleware"
	ws "github.com/dukerupert/famdo/internal/websocket"
)

const limiterIdle = 10 * time.Minute

// Options tunes per-client command throttling. A zero CommandRate disables it.
type Options struct {
	CommandRate  float64
	CommandBurst int
}

type Server struct {
	hub         *ws.Hub
	dispatcher  *handler.Dispatcher
	backupH     *handler.BackupHandler
	metrics     *metrics.Metrics
	rateLimiter *middleware.RateLimiter
	limits      ws.Limits
	logger      *slog.Logger
}

// New wires the HTTP surface around an already loaded coordinator. hub must
// be the same hub the coordinator emits to.
func New(coord *coordinator.Coordinator, hub *ws.Hub, m *metrics.Metrics, backupMgr *backup.Manager, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		hub:        hub,
		dispatcher: handler.NewDispatcher(coord, logger.With("component", "commands")),
		backupH:    handler.NewBackupHandler(backupMgr, logger.With("component", "backup_handler")),
		metrics:    m,
		limits:     ws.Limits{Rate: rate.Limit(opts.CommandRate), Burst: opts.CommandBurst},
		logger:     logger,
	}
	if opts.CommandRate > 0 {
		s.rateLimiter = middleware.NewRateLimiter(opts.CommandRate, max(opts.CommandBurst, 1), limiterIdle)
	}
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *ws.Hub {
	return s.hub
}

// RateLimiter returns the rate limiter for cleanup tasks. It is nil when
// throttling is off.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// RunCleanup drops idle rate limiter entries until ctx is done.
func (s *Server) RunCleanup(ctx context.Context) {
	if s.rateLimiter == nil {
		return
	}
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.rateLimiter.Cleanup()
		}
	}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/data", s.dispatcher.Data)
	mux.Handle("POST /api/commands", s.rateLimited(http.HandlerFunc(s.dispatcher.Command)))
	mux.HandleFunc("GET /api/ws", ws.HandleWebSocket(s.hub, s.dispatcher, s.limits))

	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.Handle("POST /api/backups", s.rateLimited(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("POST /api/backups/{key...}", s.rateLimited(http.HandlerFunc(s.backupH.Restore)))

	return middleware.RequestLogger(s.logger.With("component", "http"), s.metrics)(mux)
}

func (s *Server) rateLimited(h http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return h
	}
	return middleware.RateLimit(s.rateLimiter, middleware.RealIP)(h)
}
