package room

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/carmina/signado/internal/game"
)

// ErrNotConfigured is returned when a round start is attempted before the
// creator has set a game configuration.
var ErrNotConfigured = errors.New("room has no game configuration")

// GameConfig is the creator-selected round setup, broadcast to every
// participant so each initializes an identical game locally.
type GameConfig struct {
	Mode        game.Mode `json:"mode"`
	DurationSec int       `json:"duration"`
	Material    string    `json:"material"`
	Classes     []string  `json:"classes,omitempty"`
}

// Participant is one member of a room.
type Participant struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CameraReady bool   `json:"camera_ready"`
	Score       int    `json:"score"`
}

// Room is one live play session. All methods are safe for concurrent use.
type Room struct {
	manager   *Manager
	code      string
	creatorID string

	mu           sync.Mutex
	participants map[string]*Participant
	order        []string
	config       *GameConfig
	roundActive  bool
	generation   uint64
	closed       bool
}

func newRoom(m *Manager, code, creatorID string) *Room {
	return &Room{
		manager:      m,
		code:         code,
		creatorID:    creatorID,
		participants: make(map[string]*Participant),
	}
}

// Code returns the room's join code.
func (r *Room) Code() string {
	return r.code
}

// CreatorID returns the participant ID of the room's creator.
func (r *Room) CreatorID() string {
	return r.creatorID
}

// Join adds a participant. Joining again under the same ID is a no-op.
// New participants are rejected while a round is running. The roster and
// current readiness are broadcast, and the room's game configuration, if
// already set, is sent to the joiner.
func (r *Room) Join(id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if _, ok := r.participants[id]; ok {
		return nil
	}
	if r.roundActive {
		return fmt.Errorf("%w: game already in progress", ErrRoundActive)
	}
	if len(r.participants) >= MaxParticipants {
		return fmt.Errorf("%w: %d participants", ErrRoomFull, len(r.participants))
	}

	r.participants[id] = &Participant{ID: id, Name: name}
	r.order = append(r.order, id)

	r.broadcast(Event{Type: EventParticipantsUpdated, Data: r.rosterLocked()})
	if r.config != nil {
		r.manager.transport.Send(r.code, id, Event{Type: EventGameConfigSet, Data: *r.config})
	}
	r.checkReadinessLocked()
	return nil
}

// Leave removes a participant. The creator leaving closes the whole room;
// otherwise the roster and readiness are re-broadcast, and an emptied room
// is dropped.
func (r *Room) Leave(id string) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}

	if id == r.creatorID {
		name := ""
		if p, ok := r.participants[id]; ok {
			name = p.Name
		}
		r.closeLocked(fmt.Sprintf("Room closed by creator %s", name))
		r.mu.Unlock()
		return
	}

	if _, ok := r.participants[id]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.participants, id)
	for i, pid := range r.order {
		if pid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	if len(r.participants) == 0 {
		r.closed = true
		r.mu.Unlock()
		r.manager.remove(r.code)
		return
	}

	r.broadcast(Event{Type: EventParticipantsUpdated, Data: r.rosterLocked()})
	r.checkReadinessLocked()
	r.mu.Unlock()
}

// Close shuts the room down with the given reason.
func (r *Room) Close(reason string) {
	r.mu.Lock()
	if !r.closed {
		r.closeLocked(reason)
	}
	r.mu.Unlock()
}

// closeLocked broadcasts the closure and detaches the room. The caller holds
// the lock and is responsible for unlocking.
func (r *Room) closeLocked(reason string) {
	r.closed = true
	r.roundActive = false
	r.generation++
	r.broadcast(Event{Type: EventRoomClosed, Data: RoomClosedPayload{Message: reason}})
	r.manager.remove(r.code)
	log.Printf("Room %s closed: %s", r.code, reason)
}

// SetCameraReady updates a participant's camera flag and re-broadcasts
// readiness.
func (r *Room) SetCameraReady(id string, ready bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok || r.closed {
		return
	}
	p.CameraReady = ready
	r.checkReadinessLocked()
}

// Configure sets the round configuration. Only the creator may configure;
// the configuration is broadcast to every participant.
func (r *Room) Configure(id string, config GameConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.creatorID {
		return ErrNotCreator
	}
	if r.closed {
		return ErrRoomNotFound
	}

	r.config = &config
	r.broadcast(Event{Type: EventGameConfigSet, Data: config})
	return nil
}

// Config returns the current round configuration, or nil if unset.
func (r *Room) Config() *GameConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config == nil {
		return nil
	}
	cfg := *r.config
	return &cfg
}

// StartRound begins the countdown and round timer. It fails unless a
// configuration is set, every camera is ready, and no round is running.
func (r *Room) StartRound() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.config == nil {
		return ErrNotConfigured
	}
	if r.roundActive {
		return ErrRoundActive
	}

	ready, total := r.readyCountLocked()
	if total == 0 || ready != total {
		return fmt.Errorf("%w: %d/%d ready", ErrNotAllReady, ready, total)
	}

	r.roundActive = true
	r.generation++
	duration := time.Duration(r.config.DurationSec) * time.Second
	go r.runRound(r.generation, duration)

	log.Printf("Room %s: round starting (%s, %ds)", r.code, r.config.Mode, r.config.DurationSec)
	return nil
}

// runRound drives the countdown, the start signal, and the round timer.
// A generation mismatch means the room was closed or restarted underneath
// this round, which silences it.
func (r *Room) runRound(generation uint64, duration time.Duration) {
	for i := CountdownSeconds; i > 0; i-- {
		if !r.roundAlive(generation) {
			return
		}
		r.broadcast(Event{Type: EventRoundCountdown, Data: CountdownPayload{Seconds: i}})
		time.Sleep(r.manager.config.CountdownTick)
	}

	if !r.roundAlive(generation) {
		return
	}
	r.broadcast(Event{Type: EventRoundStart})

	time.Sleep(duration)

	r.mu.Lock()
	if r.closed || r.generation != generation {
		r.mu.Unlock()
		return
	}
	r.roundActive = false
	r.broadcast(Event{Type: EventRoundEnd})
	r.mu.Unlock()
}

// SubmitScore records a participant's score and fans it out. Submissions
// are accepted at any time, including after the round timer has fired, so a
// slow participant's final score still lands on the leaderboard.
func (r *Room) SubmitScore(id string, score int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.participants[id]
	if !ok || r.closed {
		return
	}
	p.Score = score
	r.broadcast(Event{Type: EventLeaderboardUpdate, Data: LeaderboardPayload{Name: p.Name, Score: score}})
}

// Participants returns the roster in join order.
func (r *Room) Participants() []Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Participant, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.participants[id]; ok {
			out = append(out, *p)
		}
	}
	return out
}

// IsRoundActive reports whether a round (countdown included) is running.
func (r *Room) IsRoundActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.roundActive
}

// roundAlive reports whether the given round generation is still current.
func (r *Room) roundAlive(generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return !r.closed && r.generation == generation
}

// broadcast delivers an event to the whole room. It may be called with the
// lock held; the Transport contract forbids re-entry.
func (r *Room) broadcast(event Event) {
	r.manager.transport.Broadcast(r.code, event)
}

// rosterLocked builds the participants payload. The caller holds the lock.
func (r *Room) rosterLocked() ParticipantsPayload {
	names := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if p, ok := r.participants[id]; ok {
			names = append(names, p.Name)
		}
	}
	return ParticipantsPayload{Participants: names}
}

// readyCountLocked tallies camera readiness. The caller holds the lock.
func (r *Room) readyCountLocked() (ready, total int) {
	for _, p := range r.participants {
		total++
		if p.CameraReady {
			ready++
		}
	}
	return ready, total
}

// checkReadinessLocked broadcasts the camera tally and the all-ready or
// waiting signal. The caller holds the lock.
func (r *Room) checkReadinessLocked() {
	ready, total := r.readyCountLocked()
	status := CameraStatusPayload{Ready: ready, Total: total}

	r.broadcast(Event{Type: EventCameraStatusUpdate, Data: status})
	if total > 0 && ready == total {
		r.broadcast(Event{Type: EventAllCamerasReady})
	} else {
		r.broadcast(Event{Type: EventWaitingForCameras, Data: status})
	}
}
