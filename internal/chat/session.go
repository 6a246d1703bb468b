package chat

import "time"

// GroupPrefix namespaces broadcast group identifiers derived from room names.
const GroupPrefix = "chat_"

// GroupName returns the broadcast group identifier for a room name.
// All sessions connected to the same room share one group.
func GroupName(room string) string {
	return GroupPrefix + room
}

// Event is one chat message delivered to group members.
type Event struct {
	Room      string    `json:"room"`
	From      string    `json:"from"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one client's live connection, scoped to a single room for
// its whole life. It is created on connect and discarded on disconnect;
// nothing about it is persisted.
type Session struct {
	ID       string
	UserID   int64
	Username string
	Room     string
	Events   chan Event
}

// NewSession constructs a session bound to a room.
func NewSession(id string, userID int64, username, room string) *Session {
	return &Session{
		ID:       id,
		UserID:   userID,
		Username: username,
		Room:     room,
		Events:   make(chan Event, 8),
	}
}
