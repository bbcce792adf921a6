package models

import "time"

// MessageRole is a closed enumeration of chat message authors.
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Conversation groups chat messages and belongs to exactly one user.
type Conversation struct {
	ID        int64
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is a single chat entry inside a conversation. UserID duplicates
// the conversation owner so message queries stay owner-conjoined.
type Message struct {
	ID             int64
	ConversationID int64
	UserID         string
	Role           MessageRole
	Content        string
	CreatedAt      time.Time
}
