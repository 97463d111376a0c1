package chat

import "time"

// MaxHistoryTurns bounds a session's conversation history.
const MaxHistoryTurns = 20

// Role is the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is a bounded conversation, oldest first. It is not safe for
// concurrent use; session stores serialize access.
type History struct {
	turns []Turn
}

// NewHistory seeds a history, keeping only the newest MaxHistoryTurns.
func NewHistory(turns ...Turn) *History {
	h := &History{}
	h.Append(turns...)
	return h
}

// Append adds turns, dropping the oldest beyond MaxHistoryTurns.
func (h *History) Append(turns ...Turn) {
	h.turns = append(h.turns, turns...)
	if over := len(h.turns) - MaxHistoryTurns; over > 0 {
		h.turns = append([]Turn(nil), h.turns[over:]...)
	}
}

// Len returns the number of retained turns.
func (h *History) Len() int {
	return len(h.turns)
}

// Turns returns a copy of the retained turns.
func (h *History) Turns() []Turn {
	return append([]Turn(nil), h.turns...)
}

// Recent returns up to the last n turns.
func (h *History) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	if n > len(h.turns) {
		n = len(h.turns)
	}
	return append([]Turn(nil), h.turns[len(h.turns)-n:]...)
}
