package protocol

import (
	"fmt"

	"github.com/samber/lo"
)

const systemPromptFormat = "You are a helpful travel planner. The user's trip location is %s."

// SystemMessage builds the framing message that opens every message log.
func SystemMessage(location string) Message {
	return NewMessage(RoleSystem, fmt.Sprintf(systemPromptFormat, location))
}

// ValidateLog checks the structural invariants of a message log: it is
// non-empty, starts with exactly one system message, and every later entry is
// a user or assistant message. Stored data failing these checks is treated
// as absent by the storage tiers.
func ValidateLog(log []Message) error {
	if len(log) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidLog)
	}
	if log[0].Role != RoleSystem {
		return fmt.Errorf("%w: first message has role %q", ErrInvalidLog, log[0].Role)
	}
	for i, msg := range log[1:] {
		switch msg.Role {
		case RoleUser, RoleAssistant:
		case RoleSystem:
			return fmt.Errorf("%w: system message at index %d", ErrInvalidLog, i+1)
		default:
			return fmt.Errorf("%w: unknown role %q at index %d", ErrInvalidLog, msg.Role, i+1)
		}
	}
	return nil
}

// LatestAssistant returns the most recent assistant message in log.
func LatestAssistant(log []Message) (Message, bool) {
	msg, _, ok := lo.FindLastIndexOf(log, func(m Message) bool {
		return m.Role == RoleAssistant
	})
	return msg, ok
}

// CountRole returns the number of messages in log with the given role.
func CountRole(log []Message, role Role) int {
	return lo.CountBy(log, func(m Message) bool {
		return m.Role == role
	})
}
