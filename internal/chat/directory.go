package chat

import "time"

// DefaultRoomTopic is used when a room is created without a topic.
const DefaultRoomTopic = "General discussion"

// Directory owns the set of rooms and one History per room. Room ids are
// derived from the requested name; a taken or empty id fails creation.
// Rooms are never removed implicitly: an empty room survives until its
// creator deletes it.
//
// The Directory carries no lock of its own: the Router serializes every
// mutation and snapshot.
type Directory struct {
	rooms     map[string]*Room
	histories map[string]*History
	order     []string // room ids in creation order, for stable snapshots
	histLimit int
}

// NewDirectory returns an empty directory whose rooms retain up to
// historyLimit messages each.
func NewDirectory(historyLimit int) *Directory {
	return &Directory{
		rooms:     make(map[string]*Room),
		histories: make(map[string]*History),
		histLimit: historyLimit,
	}
}

// Create derives the room id from name and creates the room with an empty
// member set and a fresh history buffer. It returns ErrEmptyRoomName when
// the name yields no id, or ErrDuplicateRoom when the id is taken; either
// way the directory is left untouched.
func (d *Directory) Create(name, topic string, isPrivate bool, creatorID string) (*Room, error) {
	id := DeriveRoomID(name)
	if id == "" {
		return nil, ErrEmptyRoomName
	}
	if _, exists := d.rooms[id]; exists {
		return nil, ErrDuplicateRoom
	}
	if topic == "" {
		topic = DefaultRoomTopic
	}

	room := &Room{
		ID:        id,
		Name:      name,
		Topic:     topic,
		IsPrivate: isPrivate,
		CreatorID: creatorID,
		CreatedAt: time.Now(),
	}
	d.rooms[id] = room
	d.histories[id] = NewHistory(d.histLimit)
	d.order = append(d.order, id)
	return room, nil
}

// Delete removes the room and its history. Only the room's creator may
// delete it. The removed room is returned so the caller can evict its
// members and notify them.
func (d *Directory) Delete(roomID, requesterID string) (*Room, error) {
	room, ok := d.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if room.CreatorID != requesterID {
		return nil, ErrNotAuthorized
	}

	delete(d.rooms, roomID)
	delete(d.histories, roomID)
	for i, id := range d.order {
		if id == roomID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return room, nil
}

// Join appends userID to the room's member set. Joining a room you are
// already in is a no-op. Returns ErrRoomNotFound for unknown rooms.
// The caller handles the single-room invariant by leaving the previous room
// first and mirroring the change into the registry.
func (d *Directory) Join(roomID, userID string) error {
	room, ok := d.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	room.addMember(userID)
	return nil
}

// Leave removes userID from the room's member set. Leaving a room you are
// not in, or a room that no longer exists, is harmless.
func (d *Directory) Leave(roomID, userID string) {
	if room, ok := d.rooms[roomID]; ok {
		room.removeMember(userID)
	}
}

// Get returns the room for roomID.
func (d *Directory) Get(roomID string) (*Room, bool) {
	room, ok := d.rooms[roomID]
	return room, ok
}

// History returns the room's message buffer, or nil for unknown rooms.
func (d *Directory) History(roomID string) *History {
	return d.histories[roomID]
}

// Snapshot returns point-in-time copies of every room in creation order.
// Mutations after the call do not affect the returned slice.
func (d *Directory) Snapshot() []RoomSnapshot {
	out := make([]RoomSnapshot, 0, len(d.order))
	for _, id := range d.order {
		if room, ok := d.rooms[id]; ok {
			out = append(out, snapshotRoom(room))
		}
	}
	return out
}

// Len returns the number of rooms.
func (d *Directory) Len() int { return len(d.rooms) }
