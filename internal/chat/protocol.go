package chat

import (
	"encoding/json"
	"fmt"
	"log"
)

// Inbound frame types sent by clients.
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeSendMessage = "send_message"
	TypeDeleteRoom  = "delete_room"
)

// Outbound frame types delivered to clients.
const (
	TypeRoomsList         = "rooms_list"
	TypeRoomCreated       = "room_created"
	TypeRoomCreationError = "room_creation_error"
	TypeRoomJoinError     = "room_join_error"
	TypeRoomDeleteError   = "room_delete_error"
	TypeRoomDeleted       = "room_deleted"
	TypeMessageReceived   = "message_received"
	TypeUserJoined        = "user_joined"
	TypeUserLeft          = "user_left"
)

// Envelope is the wire frame: a type tag plus a type-specific payload.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Command is the closed union of decoded inbound frames. Exactly the five
// payload types below implement it.
type Command interface {
	commandType() string
}

// CreateRoomCommand asks the directory to create a room.
type CreateRoomCommand struct {
	UserID    string `json:"userId"`
	Username  string `json:"username"`
	RoomName  string `json:"roomName"`
	RoomTopic string `json:"roomTopic"`
	IsPrivate bool   `json:"isPrivate"`
}

// JoinRoomCommand binds the sender's identity and moves them into a room.
type JoinRoomCommand struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	RoomID   string `json:"roomId"`
}

// LeaveRoomCommand removes the sender from a room.
type LeaveRoomCommand struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

// SendMessageCommand posts a message into the sender's current room.
type SendMessageCommand struct {
	RoomID   string `json:"roomId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

// DeleteRoomCommand deletes a room the sender created.
type DeleteRoomCommand struct {
	UserID string `json:"userId"`
	RoomID string `json:"roomId"`
}

func (*CreateRoomCommand) commandType() string  { return TypeCreateRoom }
func (*JoinRoomCommand) commandType() string    { return TypeJoinRoom }
func (*LeaveRoomCommand) commandType() string   { return TypeLeaveRoom }
func (*SendMessageCommand) commandType() string { return TypeSendMessage }
func (*DeleteRoomCommand) commandType() string  { return TypeDeleteRoom }

// DecodeCommand parses a raw inbound frame into one of the five command
// types. Undecodable JSON and unrecognized type tags yield a
// *MalformedFrameError; the connection is never terminated for either.
func DecodeCommand(raw []byte) (Command, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, &MalformedFrameError{Reason: "invalid envelope", Err: err}
	}

	var cmd Command
	switch env.Type {
	case TypeCreateRoom:
		cmd = &CreateRoomCommand{}
	case TypeJoinRoom:
		cmd = &JoinRoomCommand{}
	case TypeLeaveRoom:
		cmd = &LeaveRoomCommand{}
	case TypeSendMessage:
		cmd = &SendMessageCommand{}
	case TypeDeleteRoom:
		cmd = &DeleteRoomCommand{}
	default:
		return nil, &MalformedFrameError{Reason: fmt.Sprintf("unrecognized type %q", env.Type)}
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, cmd); err != nil {
			return nil, &MalformedFrameError{Reason: fmt.Sprintf("invalid %s payload", env.Type), Err: err}
		}
	}
	return cmd, nil
}

// errorPayload is the body of room_creation_error, room_join_error, and
// room_delete_error events.
type errorPayload struct {
	Error string `json:"error"`
}

type roomCreatedPayload struct {
	Room RoomSnapshot `json:"room"`
}

type roomDeletedPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type presencePayload struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

// receivedMessage is a Message annotated with the per-recipient isOwn flag.
type receivedMessage struct {
	Message
	IsOwn bool `json:"isOwn"`
}

// encodeEvent marshals an outbound frame. A marshal failure returns nil,
// which Conn implementations treat as "nothing to send".
func encodeEvent(eventType string, payload any) []byte {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to encode %s payload: %v", eventType, err)
		return nil
	}
	frame, err := json.Marshal(Envelope{Type: eventType, Payload: body})
	if err != nil {
		log.Printf("Failed to encode %s frame: %v", eventType, err)
		return nil
	}
	return frame
}
