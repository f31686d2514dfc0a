package chat

import "time"

// SystemUserID is the creator recorded on rooms seeded at startup. It can
// never belong to a live connection, so seeded rooms cannot be deleted by
// clients.
const SystemUserID = "system"

// User is the registry's record of one live connection's identity. There is
// at most one User per connection; it exists from the first join_room until
// the connection closes.
type User struct {
	ID          string
	DisplayName string
	// CurrentRoom is the id of the room the user is a member of, or empty.
	// A user is a member of at most one room at a time.
	CurrentRoom string
	// Conn is a non-owning delivery handle. The registry never closes it.
	Conn Conn
}

// Room is a named channel with an ordered member set. The member slice holds
// user ids in join order; membership is authoritative here and mirrored into
// User.CurrentRoom by the router.
type Room struct {
	ID        string
	Name      string
	Topic     string
	IsPrivate bool
	CreatorID string
	CreatedAt time.Time
	Members   []string
}

// IsMember reports whether userID is in the room's member set.
func (r *Room) IsMember(userID string) bool {
	for _, id := range r.Members {
		if id == userID {
			return true
		}
	}
	return false
}

func (r *Room) addMember(userID string) {
	if !r.IsMember(userID) {
		r.Members = append(r.Members, userID)
	}
}

func (r *Room) removeMember(userID string) {
	for i, id := range r.Members {
		if id == userID {
			r.Members = append(r.Members[:i], r.Members[i+1:]...)
			return
		}
	}
}

// Message is a single chat message. Immutable once created; the JSON tags
// are the wire shape inside message_received payloads.
type Message struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	Body      string    `json:"message"`
	RoomID    string    `json:"roomId"`
	Timestamp time.Time `json:"timestamp"`
}

// RoomSnapshot is the read-only wire shape of a room used in rooms_list and
// room_created payloads. MemberCount is always derived from the member set
// at snapshot time, never stored.
type RoomSnapshot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Topic       string    `json:"topic"`
	MemberCount int       `json:"memberCount"`
	IsActive    bool      `json:"isActive"`
	Members     []string  `json:"members"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	IsPrivate   bool      `json:"isPrivate"`
}

func snapshotRoom(r *Room) RoomSnapshot {
	members := make([]string, len(r.Members))
	copy(members, r.Members)
	return RoomSnapshot{
		ID:          r.ID,
		Name:        r.Name,
		Topic:       r.Topic,
		MemberCount: len(r.Members),
		IsActive:    true,
		Members:     members,
		CreatedBy:   r.CreatorID,
		CreatedAt:   r.CreatedAt,
		IsPrivate:   r.IsPrivate,
	}
}
