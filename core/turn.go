package core

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleSystem marks the fixed preamble describing the assistant's job.
	RoleSystem Role = "system"
	// RoleUser marks turns typed by the user.
	RoleUser Role = "user"
	// RoleAssistant marks model responses.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the three known values.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// Turn is a single entry in the conversation log. Turns are immutable once
// created; ordering is established by Seq, assigned by the log on append.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
	Seq  int    `json:"seq"`
}

// NewUserTurn creates an unsequenced user turn (Seq is set on append).
func NewUserTurn(text string) Turn {
	return Turn{Role: RoleUser, Text: text}
}

// NewAssistantTurn creates an unsequenced assistant turn.
func NewAssistantTurn(text string) Turn {
	return Turn{Role: RoleAssistant, Text: text}
}
