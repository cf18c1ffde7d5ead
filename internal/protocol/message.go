package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType discriminates the WebSocket envelope.
type MessageType string

// Client to server message types.
const (
	TypeSetName    MessageType = "set_name"
	TypeCreateRoom MessageType = "create_room"
	TypeJoinRoom   MessageType = "join_room"
	TypeLeaveRoom  MessageType = "leave_room"
	TypeListRooms  MessageType = "list_rooms"
	TypeStartGame  MessageType = "start_game"
	TypeGameAction MessageType = "game_action"
	TypePing       MessageType = "ping"
)

// Server to client message types.
const (
	TypeWelcome      MessageType = "welcome"
	TypePong         MessageType = "pong"
	TypeRoomState    MessageType = "room_state"
	TypeMemberJoined MessageType = "member_joined"
	TypeMemberLeft   MessageType = "member_left"
	TypeRooms        MessageType = "rooms"
	TypeGameStarted  MessageType = "game_started"
	TypeGameState    MessageType = "game_state"
	TypeGameEnded    MessageType = "game_ended"
	TypeError        MessageType = "error"
)

// Message is the wire envelope. The payload shape depends on the type.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decode parses a raw frame into an envelope.
func Decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("malformed message: %w", err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("missing message type")
	}
	return &msg, nil
}

// Encode builds an envelope with a marshalled payload.
func Encode(msgType MessageType, payload any) ([]byte, error) {
	msg := Message{Type: msgType}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", msgType, err)
		}
		msg.Payload = raw
	}
	return json.Marshal(msg)
}
