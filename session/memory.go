package session

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/planner/core/protocol"
)

type memorySession struct {
	id       string
	tripID   string
	location string
	messages []protocol.Message
	snapshot *protocol.Snapshot
	mu       sync.RWMutex
}

func newMemorySession(tripID, location string, log []protocol.Message, snap *protocol.Snapshot) *memorySession {
	s := &memorySession{
		id:       uuid.Must(uuid.NewV7()).String(),
		tripID:   tripID,
		location: location,
		messages: protocol.CloneLog(log),
	}
	if snap != nil {
		copied := *snap
		copied.TripID = tripID
		s.snapshot = &copied
	}
	return s
}

func (s *memorySession) ID() string {
	return s.id
}

func (s *memorySession) TripID() string {
	return s.tripID
}

func (s *memorySession) Location() string {
	return s.location
}

func (s *memorySession) AddMessage(msg protocol.Message) error {
	switch msg.Role {
	case protocol.RoleUser, protocol.RoleAssistant:
	default:
		return fmt.Errorf("%w: cannot append role %q", ErrInvalidMessage, msg.Role)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if msg.Role == protocol.RoleAssistant && s.messages[len(s.messages)-1].Role != protocol.RoleUser {
		return fmt.Errorf("%w: assistant reply must follow a user message", ErrInvalidMessage)
	}

	s.messages = append(s.messages, msg)
	return nil
}

func (s *memorySession) Messages() []protocol.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return protocol.CloneLog(s.messages)
}

func (s *memorySession) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *memorySession) Snapshot() (protocol.Snapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.snapshot == nil {
		return protocol.Snapshot{}, false
	}
	return *s.snapshot, true
}

func (s *memorySession) SetSnapshot(content string) protocol.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = &protocol.Snapshot{TripID: s.tripID, Content: content}
	return *s.snapshot
}
