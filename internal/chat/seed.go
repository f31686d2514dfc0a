package chat

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"
)

// SeedMessage is one canned starter message for a seeded room.
type SeedMessage struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// SeedRoom describes a room created at startup, before any client connects.
// Seeded rooms behave exactly like user-created rooms except that their
// creator is the reserved system user, so no client can delete them.
type SeedRoom struct {
	Name            string        `json:"name"`
	Topic           string        `json:"topic"`
	IsPrivate       bool          `json:"isPrivate"`
	InitialMessages []SeedMessage `json:"initialMessages"`
}

// LoadSeedFile reads a JSON seed file: an array of SeedRoom entries.
func LoadSeedFile(path string) ([]SeedRoom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var seeds []SeedRoom
	if err := json.Unmarshal(data, &seeds); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	return seeds, nil
}

// Bootstrap creates the seeded rooms and their starter history. Starter
// messages get synthetic author ids and timestamps spread into the recent
// past so rooms look lived-in, mirroring how a fresh history would read.
// Bootstrap is meant to run once at startup, before the transport accepts
// connections.
func (r *Router) Bootstrap(seeds []SeedRoom) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, seed := range seeds {
		room, err := r.directory.Create(seed.Name, seed.Topic, seed.IsPrivate, SystemUserID)
		if err != nil {
			return fmt.Errorf("seed room %q: %w", seed.Name, err)
		}

		history := r.directory.History(room.ID)
		base := r.now()
		for i, sm := range seed.InitialMessages {
			history.Append(Message{
				ID:        r.newID(),
				UserID:    "bot_" + r.newID()[:8],
				Username:  sm.Username,
				Body:      sm.Message,
				RoomID:    room.ID,
				Timestamp: base.Add(-time.Duration(len(seed.InitialMessages)-i) * 5 * time.Minute),
			})
		}
		log.Printf("Seeded room: %s (%s) with %d starter messages", room.Name, room.ID, history.Len())
	}

	r.roomsChanged()
	return nil
}
