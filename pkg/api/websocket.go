package api

import (
	"net/http"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
)

// handleWebSocket upgrades the connection and hands it to the connection
// manager, which blocks until the client goes away. An empty origin allowlist
// restricts connections to same-origin browsers (the websocket default).
func (s *Server) handleWebSocket(c *gin.Context) {
	opts := &websocket.AcceptOptions{}
	if len(s.wsOrigins) > 0 {
		opts.OriginPatterns = s.wsOrigins
	}

	conn, err := websocket.Accept(c.Writer, c.Request, opts)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", "error", err)
		c.Status(http.StatusBadRequest)
		return
	}
	s.connManager.HandleConnection(c.Request.Context(), conn)
}
