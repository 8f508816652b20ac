package controllers

import (
	"context"
	"time"

	"zenbox/models"
)

const (
	SavedMessage = "Configuration saved!"
	ResetMessage = "Prompts restored to defaults"
	AckDuration  = 3 * time.Second
)

// Ack is a transient confirmation shown after a save
type Ack struct {
	Message string
	Until   time.Time
}

func (a Ack) Visible(now time.Time) bool {
	return a.Message != "" && now.Before(a.Until)
}

// SectionView pairs a prompt section's metadata with its current text
type SectionView struct {
	models.PromptSection
	Value string
}

// Brain edits the assistant's prompt configuration. Edits are local until
// Save sends the full object back.
type Brain struct {
	store   PromptStore
	Prompts *models.Prompts
	Fetch   Operation
	Saving  Operation
	Ack     Ack
}

func NewBrain(store PromptStore) *Brain {
	return &Brain{store: store}
}

// Load fetches the prompts. Until it succeeds nothing can be edited.
func (b *Brain) Load(ctx context.Context) error {
	b.Fetch.Start()
	prompts, err := b.store.FetchPrompts(ctx)
	if err != nil {
		b.Prompts = nil
		b.Fetch.Finish(err)
		return err
	}
	b.Use(prompts)
	return nil
}

// Use installs an already known configuration, such as the one the
// backend returned from a reset
func (b *Brain) Use(prompts models.Prompts) {
	b.Prompts = &prompts
	b.Fetch.Finish(nil)
}

// Edit changes one section locally
func (b *Brain) Edit(section, value string) error {
	if b.Prompts == nil {
		return ErrNotLoaded
	}
	if _, ok := b.Prompts.Get(section); !ok {
		return ErrUnknownSection
	}
	return b.Prompts.Set(section, value)
}

// Save sends the whole configuration and shows the acknowledgement
func (b *Brain) Save(ctx context.Context, now time.Time) error {
	if b.Prompts == nil {
		return ErrNotLoaded
	}

	b.Saving.Start()
	if _, err := b.store.UpdatePrompts(ctx, *b.Prompts); err != nil {
		b.Saving.Finish(err)
		return err
	}
	b.Saving.Finish(nil)
	b.Ack = Ack{Message: SavedMessage, Until: now.Add(AckDuration)}
	return nil
}

// Reset restores the backend defaults and adopts them
func (b *Brain) Reset(ctx context.Context, now time.Time) error {
	b.Saving.Start()
	prompts, err := b.store.ResetPrompts(ctx)
	if err != nil {
		b.Saving.Finish(err)
		return err
	}
	b.Use(prompts)
	b.Saving.Finish(nil)
	b.Ack = Ack{Message: ResetMessage, Until: now.Add(AckDuration)}
	return nil
}

// Sections lists every prompt section in display order with its text
func (b *Brain) Sections() []SectionView {
	views := make([]SectionView, 0, len(models.PromptSections))
	for _, s := range models.PromptSections {
		view := SectionView{PromptSection: s}
		if b.Prompts != nil {
			view.Value, _ = b.Prompts.Get(s.ID)
		}
		views = append(views, view)
	}
	return views
}
