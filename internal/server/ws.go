package server

import (
	"log"
	"net/http"
	"sync"

	"github.com/carmina/signado/internal/room"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// Hub-level event types, outside any single room's lifecycle.
const (
	eventRoomCreated = "room_created"
	eventError       = "error"
)

// clientMessage is one inbound frame on the room socket.
type clientMessage struct {
	Action string           `json:"action"`
	Room   string           `json:"room,omitempty"`
	ID     string           `json:"id,omitempty"`
	Name   string           `json:"name,omitempty"`
	Score  int              `json:"score,omitempty"`
	Config *room.GameConfig `json:"config,omitempty"`
}

// roomCreatedPayload carries the fresh room code back to the creator.
type roomCreatedPayload struct {
	Code          string `json:"code"`
	ParticipantID string `json:"participant_id"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// client is one websocket connection with a buffered outbound queue.
type client struct {
	conn *websocket.Conn
	send chan room.Event
	once sync.Once
}

func (c *client) enqueue(event room.Event) {
	select {
	case c.send <- event:
	default:
		// A stalled reader drops events rather than blocking the room.
		log.Printf("Dropping %s event for slow websocket client", event.Type)
	}
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// writePump drains the send queue onto the wire.
func (c *client) writePump() {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			return
		}
	}
}

// Hub implements room.Transport over gorilla websockets: it tracks which
// connection belongs to which participant in which room and relays room
// events onto the matching sockets.
type Hub struct {
	mu    sync.RWMutex
	rooms *room.Manager
	conns map[string]map[string]*client // room code → participant ID
}

// NewHub creates an empty Hub. SetRooms must be called before serving.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]map[string]*client)}
}

// SetRooms attaches the room manager the hub serves. The manager should use
// this hub as its transport.
func (h *Hub) SetRooms(rooms *room.Manager) {
	h.rooms = rooms
}

// Broadcast implements room.Transport.
func (h *Hub) Broadcast(code string, event room.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.conns[code] {
		c.enqueue(event)
	}
}

// Send implements room.Transport.
func (h *Hub) Send(code, participantID string, event room.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if c, ok := h.conns[code][participantID]; ok {
		c.enqueue(event)
	}
}

func (h *Hub) register(code, participantID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[code] == nil {
		h.conns[code] = make(map[string]*client)
	}
	h.conns[code][participantID] = c
}

func (h *Hub) unregister(code, participantID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns[code], participantID)
	if len(h.conns[code]) == 0 {
		delete(h.conns, code)
	}
}

// ServeHTTP upgrades the connection and runs the read loop until the client
// disconnects. A disconnected participant leaves its room, which closes the
// room when the participant is its creator.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan room.Event, 32)}
	go c.writePump()

	var code, participantID string
	defer func() {
		if code != "" {
			h.unregister(code, participantID)
			if current, err := h.rooms.Room(code); err == nil {
				current.Leave(participantID)
			}
		}
		c.close()
		conn.Close()
	}()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		switch msg.Action {
		case "create_room":
			if code != "" {
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: "already in a room"}})
				continue
			}
			participantID = msg.ID
			if participantID == "" {
				participantID = uuid.NewString()
			}
			created := h.rooms.CreateRoom(participantID, msg.Name)
			code = created.Code()
			h.register(code, participantID, c)
			c.enqueue(room.Event{Type: eventRoomCreated, Data: roomCreatedPayload{
				Code:          code,
				ParticipantID: participantID,
			}})

		case "join_room":
			if code != "" {
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: "already in a room"}})
				continue
			}
			target, err := h.rooms.Room(msg.Room)
			if err != nil {
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: "room does not exist"}})
				continue
			}
			participantID = msg.ID
			if participantID == "" {
				participantID = uuid.NewString()
			}
			// Register before joining so the joiner sees its own roster
			// update.
			h.register(msg.Room, participantID, c)
			if err := target.Join(participantID, msg.Name); err != nil {
				h.unregister(msg.Room, participantID)
				participantID = ""
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: err.Error()}})
				continue
			}
			code = msg.Room

		case "camera_ready":
			if current := h.currentRoom(code); current != nil {
				current.SetCameraReady(participantID, true)
			}

		case "camera_stopped":
			if current := h.currentRoom(code); current != nil {
				current.SetCameraReady(participantID, false)
			}

		case "set_game_config":
			current := h.currentRoom(code)
			if current == nil || msg.Config == nil {
				continue
			}
			if err := current.Configure(participantID, *msg.Config); err != nil {
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: err.Error()}})
			}

		case "start_game":
			current := h.currentRoom(code)
			if current == nil {
				continue
			}
			if err := current.StartRound(); err != nil {
				c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: err.Error()}})
			}

		case "score_update":
			if current := h.currentRoom(code); current != nil {
				current.SubmitScore(participantID, msg.Score)
			}

		case "leave_room":
			if code == "" {
				continue
			}
			h.unregister(code, participantID)
			if current, err := h.rooms.Room(code); err == nil {
				current.Leave(participantID)
			}
			code, participantID = "", ""

		default:
			c.enqueue(room.Event{Type: eventError, Data: errorPayload{Message: "unknown action"}})
		}
	}
}

func (h *Hub) currentRoom(code string) *room.Room {
	if code == "" {
		return nil
	}
	r, err := h.rooms.Room(code)
	if err != nil {
		return nil
	}
	return r
}
