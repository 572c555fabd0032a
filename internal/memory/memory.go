package memory

// Role of a message in a chat completion request.
type Role = string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Memory holds the dialogue history of every known conversation.
type Memory interface {
	// Get returns the history of the conversation, empty if it was never seen.
	Get(id string) []Message
	// Append adds a user message and the assistant reply produced from it.
	Append(id, user, assistant string)
	// Clear resets the history of the conversation.
	Clear(id string)
}
