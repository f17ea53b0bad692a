// Package api exposes the HTTP and WebSocket surface: session creation and
// control endpoints plus the event stream subscription socket.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/helmsman-ai/helmsman/pkg/events"
	"github.com/helmsman-ai/helmsman/pkg/queue"
	"github.com/helmsman-ai/helmsman/pkg/session"
	"github.com/helmsman-ai/helmsman/pkg/version"
)

// Server wires the session manager, worker pool, and event infrastructure to
// HTTP handlers.
type Server struct {
	manager     *session.Manager
	pool        *queue.Pool
	bus         *events.Bus
	connManager *events.ConnectionManager
	wsOrigins   []string

	logger *slog.Logger
}

// NewServer creates the API server.
func NewServer(manager *session.Manager, pool *queue.Pool, bus *events.Bus, connManager *events.ConnectionManager, wsOrigins []string) *Server {
	return &Server{
		manager:     manager,
		pool:        pool,
		bus:         bus,
		connManager: connManager,
		wsOrigins:   wsOrigins,
		logger:      slog.With("component", "api"),
	}
}

// Handler builds the routed gin engine.
func (s *Server) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())

	r.GET("/healthz", s.health)
	r.GET("/ws", s.handleWebSocket)

	sessions := r.Group("/api/sessions")
	{
		sessions.POST("", s.createSession)
		sessions.GET("", s.listSessions)
		sessions.GET("/:id", s.getSession)
		sessions.DELETE("/:id", s.deleteSession)
		sessions.GET("/:id/events", s.getEvents)
		sessions.POST("/:id/cancel", s.cancelSession)
		sessions.POST("/:id/approve", s.approvePlan)
		sessions.POST("/:id/plan", s.editPlan)
		sessions.POST("/:id/message", s.postMessage)
		sessions.POST("/:id/pause", s.pauseSession)
		sessions.POST("/:id/resume", s.resumeSession)
	}
	return r
}

// health reports service liveness and queue load.
func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"version":  version.Version,
		"sessions": s.manager.Count(),
		"queued":   s.pool.QueuedCount(),
		"active":   s.pool.ActiveCount(),
		"ws_conns": s.connManager.ActiveConnections(),
	})
}
