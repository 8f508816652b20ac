package models

// Tag is a category label attached to an email by the backend. Color holds
// the CSS classes the backend picked for the badge.
type Tag struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Email represents an email message as served by the assistant API
type Email struct {
	ID           string `json:"id"`
	Sender       string `json:"sender"`
	SenderAvatar string `json:"senderAvatar"`
	Subject      string `json:"subject"`
	Preview      string `json:"preview"`
	Body         string `json:"body"`
	Date         string `json:"date"`
	Timestamp    string `json:"timestamp,omitempty"`
	Read         bool   `json:"read"`
	Tags         []Tag  `json:"tags"`
}

// Initial returns the first letter of the sender, used when no avatar is set.
func (e Email) Initial() string {
	for _, r := range e.Sender {
		return string(r)
	}
	return "?"
}
