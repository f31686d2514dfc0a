package chat

// DefaultHistoryLimit is the number of messages a room retains when no other
// limit is configured.
const DefaultHistoryLimit = 100

// History is a bounded, ordered buffer of the most recent messages in one
// room, oldest first. Appending beyond the limit evicts from the front. A
// History is owned by the Directory together with its room and is not safe
// for concurrent use on its own; the Router serializes access.
type History struct {
	limit   int
	entries []Message
}

// NewHistory returns an empty buffer capped at limit entries. A non-positive
// limit falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append adds msg at the tail, discarding the oldest entries if the buffer
// would exceed its limit.
func (h *History) Append(msg Message) {
	h.entries = append(h.entries, msg)
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
}

// Snapshot returns a copy of the buffered messages, oldest first. The copy
// is safe to hold; later appends do not affect it.
func (h *History) Snapshot() []Message {
	out := make([]Message, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of buffered messages.
func (h *History) Len() int { return len(h.entries) }
