package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/wricardo/parabox-puzzle-game/game/config"
	"github.com/wricardo/parabox-puzzle-game/game/service"
	"github.com/wricardo/parabox-puzzle-game/game/session"
	"github.com/wricardo/parabox-puzzle-game/transport/websocket"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.txt"), []byte(config.DefaultLevel), 0644); err != nil {
		t.Fatalf("failed to write level: %v", err)
	}

	levels, err := config.NewManager(dir)
	if err != nil {
		t.Fatalf("config.NewManager failed: %v", err)
	}

	svc := service.NewGameService(session.NewManager(), levels)
	return NewServer(svc, websocket.NewHub())
}

func doJSON(t *testing.T, server *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	return rec
}

func createSession(t *testing.T, server *Server, level string) string {
	t.Helper()
	rec := doJSON(t, server, "POST", "/api/sessions", map[string]string{"level": level})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session returned %d: %s", rec.Code, rec.Body)
	}
	var info service.SessionInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("invalid create response: %v", err)
	}
	return info.ID
}

func TestCreateAndGetSession(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server, "")

	rec := doJSON(t, server, "GET", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get session returned %d", rec.Code)
	}

	var info service.SessionInfo
	json.Unmarshal(rec.Body.Bytes(), &info)
	if info.ID != id || info.State == nil {
		t.Errorf("session info = %+v", info)
	}
}

func TestGetMissingSession(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server, "GET", "/api/sessions/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing session returned %d, want 404", rec.Code)
	}
}

func TestMoveEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server, "intro")

	rec := doJSON(t, server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "right"})
	if rec.Code != http.StatusOK {
		t.Fatalf("move returned %d: %s", rec.Code, rec.Body)
	}

	var result service.MoveResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if !result.Moved || !result.Won {
		t.Errorf("move result = %+v", result)
	}

	rec = doJSON(t, server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "diagonal"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid direction returned %d, want 400", rec.Code)
	}
}

func TestUndoResetEndpoints(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server, "")

	doJSON(t, server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "right"})

	rec := doJSON(t, server, "POST", "/api/sessions/"+id+"/undo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("undo returned %d: %s", rec.Code, rec.Body)
	}
	var state service.GameState
	json.Unmarshal(rec.Body.Bytes(), &state)
	if state.Won || state.Presses != 0 {
		t.Errorf("undo state = %+v", state)
	}

	rec = doJSON(t, server, "POST", "/api/sessions/"+id+"/undo", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("undo with no history returned %d, want 400", rec.Code)
	}

	doJSON(t, server, "POST", "/api/sessions/"+id+"/move", map[string]string{"direction": "right"})
	rec = doJSON(t, server, "POST", "/api/sessions/"+id+"/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset returned %d", rec.Code)
	}
}

func TestReplayEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server, "")

	rec := doJSON(t, server, "POST", "/api/sessions/"+id+"/replay", map[string]string{"solution": "R"})
	if rec.Code != http.StatusOK {
		t.Fatalf("replay returned %d: %s", rec.Code, rec.Body)
	}

	var result service.ReplayResult
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Steps != 1 || !result.Won {
		t.Errorf("replay result = %+v", result)
	}
}

func TestListEndpoints(t *testing.T) {
	server := newTestServer(t)
	createSession(t, server, "")
	createSession(t, server, "intro")

	rec := doJSON(t, server, "GET", "/api/sessions?limit=1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list sessions returned %d", rec.Code)
	}
	var listResp struct {
		Count    int                    `json:"count"`
		Sessions []*service.SessionInfo `json:"sessions"`
	}
	json.Unmarshal(rec.Body.Bytes(), &listResp)
	if listResp.Count != 1 || len(listResp.Sessions) != 1 {
		t.Errorf("limited list = %+v", listResp)
	}

	rec = doJSON(t, server, "GET", "/api/levels", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list levels returned %d", rec.Code)
	}
	var levelResp struct {
		Count  int                  `json:"count"`
		Levels []*service.LevelInfo `json:"levels"`
	}
	json.Unmarshal(rec.Body.Bytes(), &levelResp)
	if levelResp.Count != 1 || levelResp.Levels[0].Name != "intro" {
		t.Errorf("levels = %+v", levelResp)
	}
}

func TestDeleteSessionEndpoint(t *testing.T) {
	server := newTestServer(t)
	id := createSession(t, server, "")

	rec := doJSON(t, server, "DELETE", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete returned %d", rec.Code)
	}
	rec = doJSON(t, server, "GET", "/api/sessions/"+id, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("deleted session still reachable: %d", rec.Code)
	}
}

func TestWebSocketRequiresSessionID(t *testing.T) {
	server := newTestServer(t)
	rec := doJSON(t, server, "GET", "/ws", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("ws without session_id returned %d, want 400", rec.Code)
	}
}
