package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/helmsman-ai/helmsman/pkg/config"
	"github.com/helmsman-ai/helmsman/pkg/models"
	"github.com/helmsman-ai/helmsman/pkg/plan"
	"github.com/helmsman-ai/helmsman/pkg/queue"
	"github.com/helmsman-ai/helmsman/pkg/session"
)

// CreateSessionRequest is the body of POST /api/sessions. Config, when
// present, overrides the server-wide session defaults for this session only.
type CreateSessionRequest struct {
	Task        string                `json:"task" binding:"required"`
	Attachments []models.Attachment   `json:"attachments,omitempty"`
	Config      *config.SessionConfig `json:"config,omitempty"`
}

// MessageRequest is the body of POST /api/sessions/:id/message.
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// createSession registers a session and queues it for execution.
func (s *Server) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.manager.Create(req.Task, req.Attachments, req.Config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.pool.Enqueue(sess); err != nil {
		// Don't leave an unrunnable session behind.
		sess.Cancel()
		s.manager.Remove(sess.ID)
		status := http.StatusServiceUnavailable
		if errors.Is(err, queue.ErrQueueFull) {
			status = http.StatusTooManyRequests
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	s.logger.Info("Session accepted", "session_id", sess.ID)
	c.JSON(http.StatusCreated, sess.View())
}

func (s *Server) listSessions(c *gin.Context) {
	sessions := s.manager.List()
	views := make([]session.View, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, sess.View())
	}
	c.JSON(http.StatusOK, gin.H{"sessions": views})
}

func (s *Server) getSession(c *gin.Context) {
	sess, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

// deleteSession forgets a terminal session and drops its retained events.
func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.manager.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if !s.manager.Remove(id) {
		c.JSON(http.StatusConflict, gin.H{"error": "session is not terminal"})
		return
	}
	s.bus.Remove(id)
	c.Status(http.StatusNoContent)
}

// getEvents returns the retained event log, optionally after ?since=<seq>.
func (s *Server) getEvents(c *gin.Context) {
	id := c.Param("id")
	if _, ok := s.manager.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	since := int64(0)
	if raw := c.Query("since"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "since must be an integer"})
			return
		}
		since = parsed
	}
	c.JSON(http.StatusOK, gin.H{"events": s.bus.Events(id, since)})
}

func (s *Server) cancelSession(c *gin.Context) {
	sess, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if !sess.Cancel() {
		c.JSON(http.StatusConflict, gin.H{"error": "session already finished"})
		return
	}
	c.JSON(http.StatusOK, sess.View())
}

func (s *Server) approvePlan(c *gin.Context) {
	s.submitInput(c, func(sess *session.Session) error { return sess.Approve() })
}

// editPlan replaces the plan; the body is the full plan JSON. During approval
// an edit also counts as acceptance.
func (s *Server) editPlan(c *gin.Context) {
	var p plan.Plan
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.submitInput(c, func(sess *session.Session) error { return sess.EditPlan(&p) })
}

func (s *Server) postMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.submitInput(c, func(sess *session.Session) error { return sess.SubmitMessage(req.Content) })
}

func (s *Server) pauseSession(c *gin.Context) {
	s.submitInput(c, func(sess *session.Session) error { return sess.Pause() })
}

func (s *Server) resumeSession(c *gin.Context) {
	s.submitInput(c, func(sess *session.Session) error { return sess.Resume() })
}

// submitInput relays a control input into a running session, mapping the
// session-state errors to HTTP statuses.
func (s *Server) submitInput(c *gin.Context, send func(*session.Session) error) {
	sess, ok := s.manager.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	if err := send(sess); err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, session.ErrNotRunning) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}
