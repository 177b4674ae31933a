package domain

import (
	"fmt"
	"strings"
)

// GenerationStatus is the lifecycle state of a GenerationRecord.
type GenerationStatus string

const (
	StatusPending   GenerationStatus = "pending"
	StatusRunning   GenerationStatus = "running"
	StatusCompleted GenerationStatus = "completed"
	StatusError     GenerationStatus = "error"
)

// IsTerminal reports whether no further transition is allowed.
func (s GenerationStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanAdvanceTo reports whether moving from s to next keeps the status moving forward.
// pending -> running -> completed; error may be entered from any non-terminal state.
func (s GenerationStatus) CanAdvanceTo(next GenerationStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch next {
	case StatusRunning:
		return s == StatusPending
	case StatusCompleted:
		return s == StatusRunning
	case StatusError:
		return true
	default:
		return false
	}
}

// JoinType selects the JOIN keyword emitted for a JoinSpec.
type JoinType string

const (
	JoinInner JoinType = "INNER"
	JoinLeft  JoinType = "LEFT"
)

// Keyword returns the SQL keyword for the join type.
func (j JoinType) Keyword() string {
	if j == JoinLeft {
		return "LEFT JOIN"
	}
	return "JOIN"
}

// ParseJoinType accepts both the enum names and the SQL keywords, case-insensitively.
func ParseJoinType(s string) (JoinType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INNER", "JOIN", "INNER JOIN":
		return JoinInner, nil
	case "LEFT", "LEFT JOIN":
		return JoinLeft, nil
	default:
		return "", fmt.Errorf("unknown join type %q", s)
	}
}
