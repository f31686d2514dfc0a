package chat

import "strings"

// DeriveRoomID computes the deterministic room id for a requested room name:
// lower-cased, every run of non-alphanumeric characters collapsed to a single
// hyphen, leading and trailing hyphens stripped. "Money Talk!!" and
// "Money Talk" both derive to "money-talk", which is why creation rejects a
// taken id instead of silently colliding.
//
// An empty result (a name with no alphanumeric characters at all) is not a
// valid id; the caller treats it as a creation failure.
func DeriveRoomID(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
		default:
			pendingHyphen = true
		}
	}

	return b.String()
}
