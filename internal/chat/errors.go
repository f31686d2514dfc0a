package chat

import (
	"errors"
	"fmt"
)

// Sentinel errors for room directory operations. The router maps these to
// typed error events on the originating connection; everything else that can
// go wrong at runtime (a room vanishing mid-command, a message from a user
// that already disconnected) is a deliberate silent drop, never an error.
var (
	ErrEmptyRoomName = errors.New("room name is required")
	ErrDuplicateRoom = errors.New("a room with this name already exists")
	ErrRoomNotFound  = errors.New("room not found")
	ErrNotAuthorized = errors.New("only the room creator can delete this room")
)

// MalformedFrameError reports an inbound frame that could not be decoded
// into a known command. Malformed frames are logged and dropped; they never
// terminate the connection.
type MalformedFrameError struct {
	Reason string
	Err    error
}

func (e *MalformedFrameError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed frame: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed frame: %s", e.Reason)
}

func (e *MalformedFrameError) Unwrap() error { return e.Err }
