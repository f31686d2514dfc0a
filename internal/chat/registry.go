package chat

import "github.com/google/uuid"

// Registry tracks live connections and the user identity bound to each. It
// exclusively owns User records; rooms refer to users by id only.
//
// The Registry carries no lock of its own: the Router serializes every call.
type Registry struct {
	users   map[string]*User
	byConn  map[Conn]string // connection -> bound user id
	connIDs map[Conn]string // connection -> opaque connection id
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		users:   make(map[string]*User),
		byConn:  make(map[Conn]string),
		connIDs: make(map[Conn]string),
	}
}

// Register allocates an identity slot for a freshly opened connection and
// returns its connection id. No User exists until the connection's first
// join binds one.
func (reg *Registry) Register(conn Conn) string {
	if id, ok := reg.connIDs[conn]; ok {
		return id
	}
	id := uuid.NewString()
	reg.connIDs[conn] = id
	return id
}

// Unregister forgets a closed connection. Any bound user must already have
// been removed by the caller; unknown connections are a no-op.
func (reg *Registry) Unregister(conn Conn) {
	delete(reg.connIDs, conn)
	delete(reg.byConn, conn)
}

// BindIdentity creates or refreshes the User record for userID and binds it
// to conn. Binding the same identity again is idempotent; a rebind from a
// new connection supersedes the old one.
func (reg *Registry) BindIdentity(conn Conn, userID, displayName string) *User {
	user, ok := reg.users[userID]
	if !ok {
		user = &User{ID: userID}
		reg.users[userID] = user
	}
	if user.Conn != nil && user.Conn != conn {
		delete(reg.byConn, user.Conn)
	}
	user.DisplayName = displayName
	user.Conn = conn
	reg.byConn[conn] = userID
	return user
}

// Get returns the user record for userID. Unknown ids return ok=false.
func (reg *Registry) Get(userID string) (*User, bool) {
	user, ok := reg.users[userID]
	return user, ok
}

// LookupByConnection resolves which user a connection belongs to, used when
// the transport reports a close. Connections that never joined return
// ok=false.
func (reg *Registry) LookupByConnection(conn Conn) (*User, bool) {
	userID, ok := reg.byConn[conn]
	if !ok {
		return nil, false
	}
	user, ok := reg.users[userID]
	return user, ok
}

// SetCurrentRoom updates the user's current room; pass the empty string for
// "no room". Pure state update: room membership is the caller's job.
func (reg *Registry) SetCurrentRoom(userID, roomID string) {
	if user, ok := reg.users[userID]; ok {
		user.CurrentRoom = roomID
	}
}

// Remove deletes the user record. Callers must have removed the user from
// any room first. Unknown ids are a no-op.
func (reg *Registry) Remove(userID string) {
	user, ok := reg.users[userID]
	if !ok {
		return
	}
	if user.Conn != nil {
		delete(reg.byConn, user.Conn)
	}
	delete(reg.users, userID)
}

// EachConn calls fn for every registered connection, bound or not. Used for
// broadcast-to-all delivery.
func (reg *Registry) EachConn(fn func(Conn)) {
	for conn := range reg.connIDs {
		fn(conn)
	}
}

// UserCount returns the number of bound users.
func (reg *Registry) UserCount() int { return len(reg.users) }

// ConnCount returns the number of registered connections.
func (reg *Registry) ConnCount() int { return len(reg.connIDs) }
