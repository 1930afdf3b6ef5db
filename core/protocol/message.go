// Package protocol defines the data model shared by every planner subsystem:
// conversation messages, the per-trip message log, trips, and itinerary
// snapshots.
package protocol

import "slices"

// Role identifies the sender of a conversation message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Message is a single role-tagged entry in a trip's conversation.
// Messages are values; once appended to a log they are never edited.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// NewMessage creates a Message with the given role and content.
//
// Example:
//
//	msg := protocol.NewMessage(protocol.RoleUser, "Add a day in Nara")
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// CloneLog returns an independent copy of log. A nil log stays nil.
func CloneLog(log []Message) []Message {
	return slices.Clone(log)
}
