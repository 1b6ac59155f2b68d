package core

// Role identifies the author of a chat message.
type Role string

const (
	// RoleSystem marks instructions injected by the caller, not the user.
	RoleSystem Role = "system"
	// RoleUser marks end-user authored messages.
	RoleUser Role = "user"
	// RoleAssistant marks model authored messages.
	RoleAssistant Role = "assistant"
)

// Message is a single chat message in a turn request.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// TurnRequest carries everything the engine needs for one conversational
// turn. Messages must contain at least one user message; the last user
// message is the question and everything before it is history.
type TurnRequest struct {
	Messages       []Message    `json:"messages"`
	Profile        *UserProfile `json:"profile,omitempty"`
	TenantID       string       `json:"tenant_id,omitempty"`
	ConversationID string       `json:"conversation_id,omitempty"`
}

// Validate checks the structural invariants of the request. It returns a
// *ValidationError so callers can distinguish bad input from internal
// failures.
func (r TurnRequest) Validate() error {
	if len(r.Messages) == 0 {
		return &ValidationError{Reason: "no messages provided"}
	}
	for _, m := range r.Messages {
		if m.Role == RoleUser {
			return nil
		}
	}
	return &ValidationError{Reason: "no user message provided"}
}

// SplitQuestion returns the last user message as the question and all
// messages preceding it as history. ok is false when no user message exists.
func (r TurnRequest) SplitQuestion() (question Message, history []Message, ok bool) {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == RoleUser {
			return r.Messages[i], r.Messages[:i], true
		}
	}
	return Message{}, nil, false
}

// ConversationKey identifies the continuity scope of a request. The zero
// value (or any key missing one of its parts) means continuity is disabled
// for the turn.
func (r TurnRequest) ConversationKey() ConversationKey {
	return ConversationKey{TenantID: r.TenantID, ConversationID: r.ConversationID}
}
