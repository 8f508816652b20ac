package controllers

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"zenbox/models"
)

const (
	// Greeting seeds every new transcript
	Greeting = "Hey! I'm ZenChat, your AI assistant. Ask me about your emails, tasks, or anything in your inbox. Try asking 'What are my tasks?' or 'Any urgent emails?'"

	// ErrorReply replaces the pending answer when the query fails
	ErrorReply = "Sorry, I encountered an error. Please try again."
)

// Chat is one session's transcript. At most one question is outstanding;
// its answer replaces the loading placeholder in place.
type Chat struct {
	mu       sync.Mutex
	messages []models.Message
	pending  string
	newID    func() string
}

func NewChat() *Chat {
	c := &Chat{newID: uuid.NewString}
	c.messages = []models.Message{{
		ID:      "greeting",
		Role:    models.RoleAssistant,
		Content: Greeting,
	}}
	return c
}

// Begin appends the user's message and a loading placeholder. It returns
// the placeholder id to resolve later and the query to send.
func (c *Chat) Begin(input string) (string, string, error) {
	if strings.TrimSpace(input) == "" {
		return "", "", ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != "" {
		return "", "", ErrSendInFlight
	}

	placeholder := "loading-" + c.newID()
	c.messages = append(c.messages,
		models.Message{ID: c.newID(), Role: models.RoleUser, Content: input},
		models.Message{ID: placeholder, Role: models.RoleAssistant, Loading: true},
	)
	c.pending = placeholder
	return placeholder, input, nil
}

// Resolve fills the placeholder with the answer
func (c *Chat) Resolve(id, answer string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settle(id, answer)
}

// Fail fills the placeholder with the fixed error reply
func (c *Chat) Fail(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settle(id, ErrorReply)
}

func (c *Chat) settle(id, content string) bool {
	if id == "" || id != c.pending {
		return false
	}
	for i := range c.messages {
		if c.messages[i].ID == id {
			c.messages[i].Content = content
			c.messages[i].Loading = false
			break
		}
	}
	c.pending = ""
	return true
}

// Send runs a whole exchange synchronously. A failed query is not an
// error for the caller: the transcript already shows ErrorReply.
func (c *Chat) Send(ctx context.Context, q ChatQuerier, input string) error {
	id, query, err := c.Begin(input)
	if err != nil {
		return err
	}

	answer, err := q.QueryChat(ctx, query)
	if err != nil {
		c.Fail(id)
		return nil
	}
	c.Resolve(id, answer)
	return nil
}

// Messages returns a copy of the transcript in order
func (c *Chat) Messages() []models.Message {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]models.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Pending reports whether an answer is outstanding
func (c *Chat) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != ""
}

func (c *Chat) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
