package room

// Event is one message delivered to a room's participants. Payloads are
// plain structs; framing is the transport's concern.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event types broadcast by rooms.
const (
	EventParticipantsUpdated = "participants_updated"
	EventCameraStatusUpdate  = "camera_status_update"
	EventAllCamerasReady     = "all_cameras_ready"
	EventWaitingForCameras   = "waiting_for_cameras"
	EventGameConfigSet       = "game_config_set"
	EventRoundCountdown      = "round_countdown"
	EventRoundStart          = "round_start"
	EventRoundEnd            = "round_end"
	EventLeaderboardUpdate   = "leaderboard_update"
	EventRoomClosed          = "room_closed"
)

// Transport delivers events to participants. Implementations must not call
// back into the room from within Broadcast or Send.
type Transport interface {
	// Broadcast delivers the event to every participant in the room.
	Broadcast(code string, event Event)
	// Send delivers the event to a single participant.
	Send(code, participantID string, event Event)
}

// ParticipantsPayload lists the current participants by name.
type ParticipantsPayload struct {
	Participants []string `json:"participants"`
}

// CameraStatusPayload reports how many participants have their camera ready.
type CameraStatusPayload struct {
	Ready int `json:"ready"`
	Total int `json:"total"`
}

// CountdownPayload carries the seconds remaining before round start.
type CountdownPayload struct {
	Seconds int `json:"seconds"`
}

// LeaderboardPayload carries one participant's updated score.
type LeaderboardPayload struct {
	Name  string `json:"username"`
	Score int    `json:"score"`
}

// RoomClosedPayload explains why the room was closed.
type RoomClosedPayload struct {
	Message string `json:"message"`
}
