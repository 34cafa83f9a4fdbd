package models

import "strings"

// Unknown is the placeholder used when a value cannot be determined.
const Unknown = "unknown"

// UnknownSession is the sentinel a client sends when it has no session yet.
// Entries under it are never buffered.
const UnknownSession = Unknown

// SessionActionKey identifies one FIFO inside a SessionActionBuffer.
// It is a comparable value type and can be used directly as a map key.
type SessionActionKey struct {
	SessionID string
	Category  ActionCategory
}

// NewSessionActionKey builds a key for the given session and category.
func NewSessionActionKey(sessionID string, category ActionCategory) SessionActionKey {
	return SessionActionKey{SessionID: sessionID, Category: category}
}

func (k SessionActionKey) String() string {
	return k.SessionID + ":" + string(k.Category)
}

// Less orders keys by session, then category. Flush output is sorted with it
// so that all keys of one session are processed together.
func (k SessionActionKey) Less(other SessionActionKey) bool {
	if k.SessionID != other.SessionID {
		return k.SessionID < other.SessionID
	}
	return k.Category < other.Category
}

// IsBufferableSession reports whether entries for sessionID may be buffered.
// Blank ids and the "unknown" sentinel are rejected.
func IsBufferableSession(sessionID string) bool {
	trimmed := strings.TrimSpace(sessionID)
	if trimmed == "" {
		return false
	}
	return !strings.EqualFold(trimmed, UnknownSession)
}
