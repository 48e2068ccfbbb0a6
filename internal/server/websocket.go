package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/atikulmunna/loupe/internal/model"
	"github.com/atikulmunna/loupe/internal/session"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// viewSnapshot is one WebSocket frame: the session's full filtered view plus
// its current counts. Views are never streamed partially — a frame always
// carries a complete, consistent recomputation result.
type viewSnapshot struct {
	Session string            `json:"session"`
	Stats   session.Stats     `json:"stats"`
	Records []model.LogRecord `json:"records"`
}

// handleWebSocket upgrades the connection and pushes a fresh view snapshot
// whenever the session changes (reload, filter or highlight mutation). The
// first frame is sent immediately so clients start from the current state.
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	changes := s.ws.Subscribe()
	defer s.ws.Unsubscribe(changes)

	// Read pump — detect client disconnect.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		snap := viewSnapshot{
			Session: sess.ID().String(),
			Stats:   sess.Snapshot(),
			Records: sess.Filtered(),
		}
		if err := conn.WriteJSON(snap); err != nil {
			log.Printf("websocket write failed: %v", err)
			return false
		}
		return true
	}

	if !send() {
		return
	}

	for {
		select {
		case <-done:
			return
		case id, ok := <-changes:
			if !ok {
				return
			}
			if id != sess.ID() {
				continue
			}
			// A change event for a session no longer in the workspace means
			// it was closed; end the stream instead of idling forever.
			if _, open := s.ws.Get(id); !open {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session closed"))
				return
			}
			if !send() {
				return
			}
		}
	}
}
