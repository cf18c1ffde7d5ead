package protocol

import "encoding/json"

// ==================== Client payloads ====================

// SetNamePayload sets the display name for the connection.
type SetNamePayload struct {
	Name string `json:"name"`
}

// CreateRoomPayload opens a new room.
type CreateRoomPayload struct {
	Name string `json:"name"`
}

// JoinRoomPayload joins an existing room by its code.
type JoinRoomPayload struct {
	RoomID string `json:"room_id"`
}

// GameActionPayload submits one game action. The inner payload is passed to
// the game engine untouched.
type GameActionPayload struct {
	GameID  string          `json:"game_id"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ==================== Server payloads ====================

// WelcomePayload greets a new connection with its assigned member id.
type WelcomePayload struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// MemberInfo describes one room member.
type MemberInfo struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	IsHost   bool   `json:"is_host"`
}

// RoomInfo describes one room for lobby listings and room state updates.
type RoomInfo struct {
	RoomID  string       `json:"room_id"`
	Name    string       `json:"name"`
	Members []MemberInfo `json:"members"`
	Started bool         `json:"started"`
	GameID  string       `json:"game_id,omitempty"`
}

// RoomsPayload lists open rooms.
type RoomsPayload struct {
	Rooms []RoomInfo `json:"rooms"`
}

// MemberEventPayload reports a member joining or leaving a room.
type MemberEventPayload struct {
	RoomID   string `json:"room_id"`
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
}

// GameStartedPayload announces the new game to a room.
type GameStartedPayload struct {
	RoomID string `json:"room_id"`
	GameID string `json:"game_id"`
}

// ScoreInfo is one entry of the final standings.
type ScoreInfo struct {
	MemberID string `json:"member_id"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}

// GameEndedPayload announces the final standings.
type GameEndedPayload struct {
	GameID string      `json:"game_id"`
	Scores []ScoreInfo `json:"scores"`
}

// ErrorPayload reports a failure to the requester only.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
