package models

// Transcript roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a chat transcript entry. It lives only in memory for the
// duration of a browser session.
type Message struct {
	ID      string `json:"id"`
	Role    string `json:"role"`
	Content string `json:"content"`
	Loading bool   `json:"loading,omitempty"`
}

// ChatAnswer is the reply of the chat endpoint
type ChatAnswer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources,omitempty"`
}
