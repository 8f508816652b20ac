package models

import "fmt"

// Prompt section ids, also the JSON keys of Prompts
const (
	SectionCategorization = "categorization"
	SectionReply          = "reply"
	SectionRAG            = "rag"
)

// Prompts is the server-held configuration driving the assistant
type Prompts struct {
	Categorization string `json:"categorization"`
	Reply          string `json:"reply"`
	RAG            string `json:"rag"`
}

// PromptSection describes how a prompt is presented on the Brain page
type PromptSection struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Tip         string
}

// PromptSections lists the sections in display order.
var PromptSections = []PromptSection{
	{
		ID:          SectionCategorization,
		Title:       "Categorization Prompt",
		Description: "Logic for tagging emails (Urgent, To-Do, Newsletter, etc.)",
		Icon:        "🏷️",
		Tip:         `Tip: You can add natural language rules here, e.g., "Mark all HR emails as Urgent"`,
	},
	{
		ID:          SectionReply,
		Title:       "Auto-Reply Prompt",
		Description: "Tone and style for generating email replies",
		Icon:        "✍️",
	},
	{
		ID:          SectionRAG,
		Title:       "RAG Instructions",
		Description: "How the chat agent behaves when answering questions",
		Icon:        "🤖",
	},
}

// Get returns the value of a section.
func (p Prompts) Get(section string) (string, bool) {
	switch section {
	case SectionCategorization:
		return p.Categorization, true
	case SectionReply:
		return p.Reply, true
	case SectionRAG:
		return p.RAG, true
	}
	return "", false
}

// Set replaces the value of a section.
func (p *Prompts) Set(section, value string) error {
	switch section {
	case SectionCategorization:
		p.Categorization = value
	case SectionReply:
		p.Reply = value
	case SectionRAG:
		p.RAG = value
	default:
		return fmt.Errorf("unknown prompt section %q", section)
	}
	return nil
}
