package server

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/carmina/signado/internal/room"
	"github.com/carmina/signado/internal/store"
	"github.com/gorilla/websocket"
)

func TestHealthEndpoint(t *testing.T) {
	s := New(Config{})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v, want ok", body["status"])
	}

	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/health", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", rec.Code)
	}
}

func TestWordsRouteWired(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer st.Close()

	s := New(Config{Store: st})

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/words", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/words status = %d, want 200", rec.Code)
	}
}

// wsClient wraps a test websocket connection with helpers for the room
// protocol.
type wsClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func dialHub(t *testing.T, url string) *wsClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return &wsClient{t: t, conn: conn}
}

func (c *wsClient) send(msg map[string]any) {
	c.t.Helper()
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("write failed: %v", err)
	}
}

// expect reads events until one of the wanted type arrives.
func (c *wsClient) expect(eventType string) map[string]any {
	c.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.conn.SetReadDeadline(deadline)
		var event struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := c.conn.ReadJSON(&event); err != nil {
			c.t.Fatalf("waiting for %q: %v", eventType, err)
		}
		if event.Type != eventType {
			continue
		}
		var data map[string]any
		if len(event.Data) > 0 {
			json.Unmarshal(event.Data, &data)
		}
		return data
	}
}

func TestHub_RoomLifecycle(t *testing.T) {
	hub := NewHub()
	rooms := room.NewManager(room.Config{
		CountdownTick: time.Millisecond,
		Rand:          rand.New(rand.NewSource(1)),
	}, hub)
	hub.SetRooms(rooms)

	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	// Creator opens a room.
	creator := dialHub(t, wsURL)
	creator.send(map[string]any{"action": "create_room", "name": "ana"})
	created := creator.expect("room_created")
	code, _ := created["code"].(string)
	if len(code) != room.CodeLength {
		t.Fatalf("room code = %q", code)
	}

	// A second participant joins and both mark cameras ready.
	joiner := dialHub(t, wsURL)
	joiner.send(map[string]any{"action": "join_room", "room": code, "name": "ben"})
	joiner.expect("participants_updated")

	creator.send(map[string]any{"action": "camera_ready"})
	joiner.send(map[string]any{"action": "camera_ready"})
	creator.expect("all_cameras_ready")

	// Creator configures and starts the round.
	creator.send(map[string]any{
		"action": "set_game_config",
		"config": map[string]any{"mode": 0, "duration": 0, "material": "alphabet"},
	})
	joiner.expect("game_config_set")

	creator.send(map[string]any{"action": "start_game"})
	countdown := joiner.expect("round_countdown")
	if secs, _ := countdown["seconds"].(float64); secs != room.CountdownSeconds {
		t.Errorf("first countdown = %v, want %d", countdown["seconds"], room.CountdownSeconds)
	}
	joiner.expect("round_start")
	joiner.expect("round_end")

	// A score submitted after round end still reaches the leaderboard.
	joiner.send(map[string]any{"action": "score_update", "score": 30})
	update := creator.expect("leaderboard_update")
	if update["username"] != "ben" || update["score"].(float64) != 30 {
		t.Errorf("leaderboard payload = %v", update)
	}
}

func TestHub_JoinUnknownRoom(t *testing.T) {
	hub := NewHub()
	rooms := room.NewManager(room.Config{CountdownTick: time.Millisecond}, hub)
	hub.SetRooms(rooms)

	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	c := dialHub(t, wsURL)
	c.send(map[string]any{"action": "join_room", "room": "NOPE", "name": "ana"})
	errData := c.expect("error")
	if errData["message"] != "room does not exist" {
		t.Errorf("error payload = %v", errData)
	}
}

func TestHub_CreatorDisconnectClosesRoom(t *testing.T) {
	hub := NewHub()
	rooms := room.NewManager(room.Config{CountdownTick: time.Millisecond}, hub)
	hub.SetRooms(rooms)

	ts := httptest.NewServer(New(Config{Hub: hub}))
	defer ts.Close()
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	creator := dialHub(t, wsURL)
	creator.send(map[string]any{"action": "create_room", "name": "ana"})
	created := creator.expect("room_created")
	code := created["code"].(string)

	joiner := dialHub(t, wsURL)
	joiner.send(map[string]any{"action": "join_room", "room": code, "name": "ben"})
	joiner.expect("participants_updated")

	creator.conn.Close()
	joiner.expect("room_closed")
}
