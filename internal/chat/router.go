package chat

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Observer receives notifications about router activity. The transport layer
// plugs its metrics in here; the core stays free of instrumentation
// libraries. All methods are called with the router lock held, so they must
// not call back into the router.
type Observer interface {
	CommandHandled(commandType string)
	MalformedFrame()
	MessageStored()
	RoomsChanged(total int)
}

// Router validates inbound commands against registry and directory state,
// applies the mutation, and delivers the resulting events. One RWMutex
// guards registry, directory, and history together: commands touching the
// same room or user are applied in a total order, never interleaved.
// Snapshot reads take only the read lock.
type Router struct {
	mu        sync.RWMutex
	registry  *Registry
	directory *Directory
	observer  Observer

	// Overridable in tests for deterministic ids and timestamps.
	now   func() time.Time
	newID func() string
}

// NewRouter returns a router whose rooms retain up to historyLimit messages.
// observer may be nil.
func NewRouter(historyLimit int, observer Observer) *Router {
	return &Router{
		registry:  NewRegistry(),
		directory: NewDirectory(historyLimit),
		observer:  observer,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// HandleConnect registers a freshly opened connection and pushes the current
// room directory to it, so clients render the lobby before any join.
func (r *Router) HandleConnect(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.registry.Register(conn)
	r.sendTo(conn, encodeEvent(TypeRoomsList, r.directory.Snapshot()))
}

// HandleFrame decodes one raw inbound frame and dispatches it. Malformed
// frames are logged and dropped; the connection stays open.
func (r *Router) HandleFrame(conn Conn, raw []byte) {
	cmd, err := DecodeCommand(raw)
	if err != nil {
		var malformed *MalformedFrameError
		if errors.As(err, &malformed) {
			log.Printf("Dropping frame: %v", err)
		} else {
			log.Printf("Dropping undecodable frame: %v", err)
		}
		r.mu.Lock()
		if r.observer != nil {
			r.observer.MalformedFrame()
		}
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch c := cmd.(type) {
	case *CreateRoomCommand:
		r.handleCreateRoom(conn, c)
	case *JoinRoomCommand:
		r.handleJoinRoom(conn, c)
	case *LeaveRoomCommand:
		r.handleLeaveRoom(c)
	case *SendMessageCommand:
		r.handleSendMessage(c)
	case *DeleteRoomCommand:
		r.handleDeleteRoom(conn, c)
	}
	if r.observer != nil {
		r.observer.CommandHandled(cmd.commandType())
	}
}

// HandleDisconnect tears down a closed connection's participation: leave the
// current room, announce the departure, forget the user. Idempotent: a
// connection that never joined, or was already torn down, is a no-op.
func (r *Router) HandleDisconnect(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.registry.LookupByConnection(conn)
	r.registry.Unregister(conn)
	if !ok {
		return
	}

	if roomID := user.CurrentRoom; roomID != "" {
		room, exists := r.directory.Get(roomID)
		r.directory.Leave(roomID, user.ID)
		if exists {
			r.broadcastToRoom(room, encodeEvent(TypeUserLeft, presencePayload{
				Username: user.DisplayName,
				UserID:   user.ID,
			}), "")
		}
	}

	r.registry.Remove(user.ID)
	log.Printf("User disconnected: %s", user.DisplayName)
	r.broadcastDirectory()
}

// Snapshot returns a point-in-time copy of the room directory without
// blocking mutations for longer than the read lock.
func (r *Router) Snapshot() []RoomSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.directory.Snapshot()
}

// RoomCount returns the number of rooms currently in the directory.
func (r *Router) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.directory.Len()
}

func (r *Router) handleCreateRoom(conn Conn, cmd *CreateRoomCommand) {
	room, err := r.directory.Create(cmd.RoomName, cmd.RoomTopic, cmd.IsPrivate, cmd.UserID)
	if err != nil {
		r.sendTo(conn, encodeEvent(TypeRoomCreationError, errorPayload{Error: err.Error()}))
		return
	}

	log.Printf("Room created: %s (%s) by %s", room.Name, room.ID, cmd.Username)
	r.roomsChanged()
	r.sendTo(conn, encodeEvent(TypeRoomCreated, roomCreatedPayload{Room: snapshotRoom(room)}))
	r.broadcastDirectory()
}

func (r *Router) handleJoinRoom(conn Conn, cmd *JoinRoomCommand) {
	user := r.registry.BindIdentity(conn, cmd.UserID, cmd.Username)

	room, ok := r.directory.Get(cmd.RoomID)
	if !ok {
		r.sendTo(conn, encodeEvent(TypeRoomJoinError, errorPayload{Error: "Room not found"}))
		r.sendTo(conn, encodeEvent(TypeRoomsList, r.directory.Snapshot()))
		return
	}

	if room.IsMember(user.ID) {
		// Idempotent join: no membership change, no spurious broadcasts.
		r.sendTo(conn, encodeEvent(TypeRoomsList, r.directory.Snapshot()))
		return
	}

	if prev := user.CurrentRoom; prev != "" && prev != room.ID {
		r.directory.Leave(prev, user.ID)
	}
	if err := r.directory.Join(room.ID, user.ID); err != nil {
		r.sendTo(conn, encodeEvent(TypeRoomJoinError, errorPayload{Error: err.Error()}))
		return
	}
	r.registry.SetCurrentRoom(user.ID, room.ID)

	log.Printf("%s joined room: %s", user.DisplayName, room.Name)

	// The joiner sees prior context before the join is announced to anyone.
	r.sendTo(conn, encodeEvent(TypeRoomsList, r.directory.Snapshot()))
	if history := r.directory.History(room.ID); history != nil {
		for _, msg := range history.Snapshot() {
			r.sendTo(conn, encodeEvent(TypeMessageReceived, receivedMessage{
				Message: msg,
				IsOwn:   msg.UserID == user.ID,
			}))
		}
	}

	r.broadcastToRoom(room, encodeEvent(TypeUserJoined, presencePayload{
		Username: user.DisplayName,
		UserID:   user.ID,
	}), user.ID)
	r.broadcastDirectory()
}

func (r *Router) handleLeaveRoom(cmd *LeaveRoomCommand) {
	// A queued leave for a room the user already left must not touch the
	// membership they have since established elsewhere.
	user, ok := r.registry.Get(cmd.UserID)
	if ok && cmd.RoomID != "" && user.CurrentRoom == cmd.RoomID {
		r.directory.Leave(cmd.RoomID, cmd.UserID)
		r.registry.SetCurrentRoom(cmd.UserID, "")
	}
	r.broadcastDirectory()
}

func (r *Router) handleSendMessage(cmd *SendMessageCommand) {
	user, ok := r.registry.Get(cmd.UserID)
	room, exists := r.directory.Get(cmd.RoomID)
	if !ok || !exists || !room.IsMember(user.ID) {
		// Best-effort chat: nothing is leaked to senders outside the room.
		return
	}

	msg := Message{
		ID:        r.newID(),
		UserID:    user.ID,
		Username:  cmd.Username,
		Body:      cmd.Message,
		RoomID:    room.ID,
		Timestamp: r.now(),
	}
	if history := r.directory.History(room.ID); history != nil {
		history.Append(msg)
	}
	if r.observer != nil {
		r.observer.MessageStored()
	}

	for _, memberID := range room.Members {
		member, ok := r.registry.Get(memberID)
		if !ok || member.Conn == nil {
			continue
		}
		r.sendTo(member.Conn, encodeEvent(TypeMessageReceived, receivedMessage{
			Message: msg,
			IsOwn:   memberID == user.ID,
		}))
	}
}

func (r *Router) handleDeleteRoom(conn Conn, cmd *DeleteRoomCommand) {
	room, ok := r.directory.Get(cmd.RoomID)
	if !ok {
		r.sendTo(conn, encodeEvent(TypeRoomDeleteError, errorPayload{Error: ErrRoomNotFound.Error()}))
		return
	}
	if room.CreatorID != cmd.UserID {
		r.sendTo(conn, encodeEvent(TypeRoomDeleteError, errorPayload{Error: ErrNotAuthorized.Error()}))
		return
	}

	// Members hear about the deletion while they are still members.
	r.broadcastToRoom(room, encodeEvent(TypeRoomDeleted, roomDeletedPayload{
		RoomID:   room.ID,
		RoomName: room.Name,
	}), "")

	removed, err := r.directory.Delete(room.ID, cmd.UserID)
	if err != nil {
		r.sendTo(conn, encodeEvent(TypeRoomDeleteError, errorPayload{Error: err.Error()}))
		return
	}
	for _, memberID := range removed.Members {
		r.registry.SetCurrentRoom(memberID, "")
	}

	log.Printf("Room deleted: %s (%s)", removed.Name, removed.ID)
	r.roomsChanged()
	r.broadcastDirectory()
}

// broadcastToRoom delivers payload to every currently open member connection
// of room, optionally excluding one user id.
func (r *Router) broadcastToRoom(room *Room, payload []byte, excludeUserID string) {
	for _, memberID := range room.Members {
		if memberID == excludeUserID {
			continue
		}
		member, ok := r.registry.Get(memberID)
		if !ok || member.Conn == nil {
			continue
		}
		r.sendTo(member.Conn, payload)
	}
}

// broadcastDirectory pushes the updated rooms_list to every registered
// connection, joined or not.
func (r *Router) broadcastDirectory() {
	payload := encodeEvent(TypeRoomsList, r.directory.Snapshot())
	r.registry.EachConn(func(conn Conn) {
		r.sendTo(conn, payload)
	})
}

// sendTo delivers one frame if the connection is still open. Fire and
// forget: a closed recipient is skipped, never retried.
func (r *Router) sendTo(conn Conn, payload []byte) {
	if conn == nil || payload == nil || !conn.IsOpen() {
		return
	}
	conn.Send(payload)
}

func (r *Router) roomsChanged() {
	if r.observer != nil {
		r.observer.RoomsChanged(r.directory.Len())
	}
}
