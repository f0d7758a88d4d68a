// Package room coordinates networked play sessions: participant rosters,
// camera readiness, creator-owned game configuration, the round countdown
// and timer, and score fan-out.
package room

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// Room limits.
const (
	// CodeLength is the length of generated room codes.
	CodeLength = 6
	// MaxParticipants is the hard cap on participants per room.
	MaxParticipants = 30
	// CountdownSeconds is the length of the pre-round countdown.
	CountdownSeconds = 3
)

var (
	// ErrRoomNotFound is returned for an unknown room code.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a join would exceed MaxParticipants.
	ErrRoomFull = errors.New("room full")
	// ErrNotCreator is returned when a non-creator attempts a
	// creator-only operation.
	ErrNotCreator = errors.New("operation restricted to room creator")
	// ErrNotAllReady is returned when a round start is attempted before
	// every participant's camera is ready.
	ErrNotAllReady = errors.New("not all cameras ready")
	// ErrRoundActive is returned when a round is already running.
	ErrRoundActive = errors.New("round already active")
)

// Config holds manager-wide timing parameters.
type Config struct {
	// CountdownTick is the delay between countdown events. Zero means one
	// second.
	CountdownTick time.Duration
	// Rand seeds room-code generation. Nil means a time-seeded source.
	Rand *rand.Rand
}

// DefaultConfig returns the production timing parameters.
func DefaultConfig() Config {
	return Config{CountdownTick: time.Second}
}

// Manager owns the set of live rooms and hands events to the transport.
type Manager struct {
	config    Config
	transport Transport

	mu    sync.Mutex
	rooms map[string]*Room
}

// NewManager creates a Manager that delivers room events via the given
// transport.
func NewManager(config Config, transport Transport) *Manager {
	if config.CountdownTick <= 0 {
		config.CountdownTick = time.Second
	}
	if config.Rand == nil {
		config.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Manager{
		config:    config,
		transport: transport,
		rooms:     make(map[string]*Room),
	}
}

// CreateRoom creates a room with a fresh code and joins the creator to it.
func (m *Manager) CreateRoom(creatorID, creatorName string) *Room {
	m.mu.Lock()
	code := m.generateCode()
	r := newRoom(m, code, creatorID)
	m.rooms[code] = r
	m.mu.Unlock()

	// The creator always fits in an empty room.
	_ = r.Join(creatorID, creatorName)
	return r
}

// Room looks up a live room by code.
func (m *Manager) Room(code string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// generateCode returns an unused uppercase room code. The caller holds m.mu.
func (m *Manager) generateCode() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for {
		code := make([]byte, CodeLength)
		for i := range code {
			code[i] = letters[m.config.Rand.Intn(len(letters))]
		}
		if _, taken := m.rooms[string(code)]; !taken {
			return string(code)
		}
	}
}

// remove drops a room from the live set.
func (m *Manager) remove(code string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms, code)
}
