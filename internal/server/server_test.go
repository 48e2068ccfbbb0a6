package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/atikulmunna/loupe/internal/model"
	"github.com/atikulmunna/loupe/internal/workspace"
)

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "app.log")
	content := "2025/02/25 06:28:24 INFO A: hello\n" +
		"2025/02/25 06:28:25 ERROR B: boom\n" +
		"stack line 1\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return New(workspace.New(), "127.0.0.1:0"), path
}

func doJSON(t *testing.T, s *Server, method, url string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func openSession(t *testing.T, s *Server, path string) sessionInfo {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/sessions", obj("path", path))
	if w.Code != http.StatusCreated {
		t.Fatalf("open: expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var info sessionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatal(err)
	}
	return info
}

// obj builds a one-pair JSON request body.
func obj(key string, val any) map[string]any {
	return map[string]any{key: val}
}

func TestOpenAndFetchRecords(t *testing.T) {
	s, path := newTestServer(t)
	info := openSession(t, s, path)

	if info.Stats.Total != 2 {
		t.Errorf("expected 2 records, got %d", info.Stats.Total)
	}

	w := doJSON(t, s, http.MethodGet, "/api/sessions/"+info.ID+"/records", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("records: expected 200, got %d", w.Code)
	}
	var recs []model.LogRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[1].Message != "boom\nstack line 1" {
		t.Errorf("expected folded message, got %q", recs[1].Message)
	}
}

func TestOpenMissingFile(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/sessions", obj("path", filepath.Join(t.TempDir(), "nope.log")))
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected 422 for a missing file, got %d", w.Code)
	}

	// The failed open must not leave a session behind.
	w = doJSON(t, s, http.MethodGet, "/api/sessions", nil)
	var sessions []sessionInfo
	if err := json.Unmarshal(w.Body.Bytes(), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("expected no sessions, got %d", len(sessions))
	}
}

func TestSetFilters(t *testing.T) {
	s, path := newTestServer(t)
	info := openSession(t, s, path)

	w := doJSON(t, s, http.MethodPut, "/api/sessions/"+info.ID+"/filters", obj("level", "ERROR"))
	if w.Code != http.StatusOK {
		t.Fatalf("filters: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+info.ID+"/records", nil)
	var recs []model.LogRecord
	if err := json.Unmarshal(w.Body.Bytes(), &recs); err != nil {
		t.Fatal(err)
	}
	if len(recs) != 1 || recs[0].Level != "ERROR" {
		t.Errorf("expected only the ERROR record, got %+v", recs)
	}
}

func TestHighlightRoundTrip(t *testing.T) {
	s, path := newTestServer(t)
	info := openSession(t, s, path)
	base := "/api/sessions/" + info.ID + "/highlights"

	w := doJSON(t, s, http.MethodPost, base, obj("word", "boom"))
	var addResp struct {
		Added bool `json:"added"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &addResp); err != nil {
		t.Fatal(err)
	}
	if !addResp.Added {
		t.Error("expected first add to succeed")
	}

	// Case-insensitive duplicate.
	w = doJSON(t, s, http.MethodPost, base, obj("word", "BOOM"))
	if err := json.Unmarshal(w.Body.Bytes(), &addResp); err != nil {
		t.Fatal(err)
	}
	if addResp.Added {
		t.Error("expected duplicate add to be rejected")
	}

	// Case-insensitive removal switches highlight_only off with the set empty.
	doJSON(t, s, http.MethodPut, "/api/sessions/"+info.ID+"/filters", obj("highlight_only", true))
	w = doJSON(t, s, http.MethodDelete, base+"/Boom", nil)
	var rmResp struct {
		Removed       bool     `json:"removed"`
		Highlights    []string `json:"highlights"`
		HighlightOnly bool     `json:"highlight_only"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &rmResp); err != nil {
		t.Fatal(err)
	}
	if !rmResp.Removed {
		t.Error("expected case-insensitive removal to succeed")
	}
	if len(rmResp.Highlights) != 0 {
		t.Errorf("expected empty highlight list, got %v", rmResp.Highlights)
	}
	if rmResp.HighlightOnly {
		t.Error("removing the last keyword must clear highlight_only")
	}
}

func TestCloseSession(t *testing.T) {
	s, path := newTestServer(t)
	info := openSession(t, s, path)

	w := doJSON(t, s, http.MethodDelete, "/api/sessions/"+info.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("close: expected 204, got %d", w.Code)
	}
	w = doJSON(t, s, http.MethodGet, "/api/sessions/"+info.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after close, got %d", w.Code)
	}
}

func TestMalformedSessionID(t *testing.T) {
	s, _ := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/sessions/not-a-uuid", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a malformed id, got %d", w.Code)
	}
}

func TestStreamEndsWhenSessionCloses(t *testing.T) {
	s, path := newTestServer(t)
	info := openSession(t, s, path)

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/sessions/" + info.ID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	var snap viewSnapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("initial snapshot: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Errorf("expected 2 records in the initial snapshot, got %d", len(snap.Records))
	}

	w := doJSON(t, s, http.MethodDelete, "/api/sessions/"+info.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("close: expected 204, got %d", w.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	err = conn.ReadJSON(&snap)
	if err == nil {
		t.Fatal("expected the stream to end after the session closed")
	}
	if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Errorf("expected a normal close frame, got %v", err)
	}
}
