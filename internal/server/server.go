package server

import (
	"context"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atikulmunna/loupe/internal/session"
	"github.com/atikulmunna/loupe/internal/workspace"
)

// Server exposes the workspace over HTTP: sessions, filtered views, filter
// and highlight mutations, and a WebSocket view-change stream. It is the
// "UI collaborator" for the session model — all rendering happens on the
// other side of this API.
type Server struct {
	engine *gin.Engine
	ws     *workspace.Workspace
	addr   string
}

// New creates an API server over the given workspace.
func New(ws *workspace.Workspace, addr string) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	// Disable automatic redirects that cause 301 issues.
	engine.RedirectTrailingSlash = false
	engine.RedirectFixedPath = false

	s := &Server{
		engine: engine,
		ws:     ws,
		addr:   addr,
	}

	s.setupRoutes()
	return s
}

// sessionInfo is the wire form of one session's state.
type sessionInfo struct {
	ID            string        `json:"id"`
	Path          string        `json:"path"`
	LevelFilter   string        `json:"level_filter"`
	SearchText    string        `json:"search_text"`
	Highlights    []string      `json:"highlights"`
	HighlightOnly bool          `json:"highlight_only"`
	Stats         session.Stats `json:"stats"`
}

func describe(sess *session.Session) sessionInfo {
	return sessionInfo{
		ID:            sess.ID().String(),
		Path:          sess.Path(),
		LevelFilter:   sess.LevelFilter(),
		SearchText:    sess.SearchText(),
		Highlights:    sess.Highlights(),
		HighlightOnly: sess.HighlightOnly(),
		Stats:         sess.Snapshot(),
	}
}

func (s *Server) setupRoutes() {
	// Health check.
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":   "ok",
			"sessions": len(s.ws.List()),
		})
	})

	api := s.engine.Group("/api")
	api.GET("/sessions", s.handleListSessions)
	api.POST("/sessions", s.handleOpenSession)
	api.GET("/sessions/:id", s.handleGetSession)
	api.DELETE("/sessions/:id", s.handleCloseSession)
	api.GET("/sessions/:id/records", s.handleRecords)
	api.PUT("/sessions/:id/filters", s.handleSetFilters)
	api.POST("/sessions/:id/highlights", s.handleAddHighlight)
	api.DELETE("/sessions/:id/highlights/:word", s.handleRemoveHighlight)
	api.DELETE("/sessions/:id/highlights", s.handleClearHighlights)

	// WebSocket.
	s.engine.GET("/ws/sessions/:id", s.handleWebSocket)

	// pprof profiling endpoints.
	s.engine.GET("/debug/pprof/", gin.WrapF(pprof.Index))
	s.engine.GET("/debug/pprof/profile", gin.WrapF(pprof.Profile))
	s.engine.GET("/debug/pprof/heap", gin.WrapH(pprof.Handler("heap")))
	s.engine.GET("/debug/pprof/goroutine", gin.WrapH(pprof.Handler("goroutine")))
}

// lookup resolves the :id route param to a session, writing the error
// response itself when the handle is malformed or unknown.
func (s *Server) lookup(c *gin.Context) (*session.Session, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed session id"})
		return nil, false
	}
	sess, ok := s.ws.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return nil, false
	}
	return sess, true
}

func (s *Server) handleListSessions(c *gin.Context) {
	sessions := s.ws.List()
	out := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, describe(sess))
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleOpenSession(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, err := s.ws.Open(c.Request.Context(), req.Path)
	if err != nil {
		// A bad file fails this one load; nothing else is affected.
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, describe(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, describe(sess))
}

func (s *Server) handleCloseSession(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed session id"})
		return
	}
	if !s.ws.Close(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no such session"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleRecords(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, sess.Filtered())
}

// handleSetFilters applies any provided subset of the filter fields, then
// reports the resulting state. Absent fields are left as they are.
func (s *Server) handleSetFilters(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	var req struct {
		Level         *string `json:"level"`
		Search        *string `json:"search"`
		HighlightOnly *bool   `json:"highlight_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Level != nil {
		sess.SetLevelFilter(*req.Level)
	}
	if req.Search != nil {
		sess.SetSearchText(*req.Search)
	}
	if req.HighlightOnly != nil {
		sess.SetHighlightOnly(*req.HighlightOnly)
	}

	s.ws.Notify(sess.ID())
	c.JSON(http.StatusOK, describe(sess))
}

func (s *Server) handleAddHighlight(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	var req struct {
		Word string `json:"word" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	added := sess.AddHighlight(req.Word)
	if added {
		s.ws.Notify(sess.ID())
	}
	c.JSON(http.StatusOK, gin.H{"added": added, "highlights": sess.Highlights()})
}

func (s *Server) handleRemoveHighlight(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	removed := sess.RemoveHighlight(c.Param("word"))
	if removed {
		s.ws.Notify(sess.ID())
	}
	c.JSON(http.StatusOK, gin.H{
		"removed":        removed,
		"highlights":     sess.Highlights(),
		"highlight_only": sess.HighlightOnly(),
	})
}

func (s *Server) handleClearHighlights(c *gin.Context) {
	sess, ok := s.lookup(c)
	if !ok {
		return
	}

	sess.ClearHighlights()
	s.ws.Notify(sess.ID())
	c.JSON(http.StatusOK, gin.H{
		"highlights":     sess.Highlights(),
		"highlight_only": sess.HighlightOnly(),
	})
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

// Handler exposes the route tree for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}
