package controllers

import (
	"context"
	"fmt"
	"time"

	"zenbox/models"
)

// LastSavedLayout renders the draft save time, e.g. "03:04 PM"
const LastSavedLayout = "03:04 PM"

// ReplyMode tells a fresh reply apart from an edited draft
type ReplyMode int

const (
	ModeNewReply ReplyMode = iota
	ModeEditDraft
)

// Reply is the compose modal. A new reply is generated by the assistant;
// an edited draft starts from its saved content with no network call.
type Reply struct {
	Mode       ReplyMode
	Email      *models.Email
	Draft      *models.Draft
	Content    string
	Generation Operation
	Saving     Operation
	Closed     bool
}

// NewReplyForEmail opens the modal for an email. Generation starts right
// away so the modal is loading from the first render.
func NewReplyForEmail(email models.Email) *Reply {
	r := &Reply{Mode: ModeNewReply, Email: &email}
	r.Generation.Start()
	return r
}

// NewReplyForDraft opens the modal on an existing draft
func NewReplyForDraft(draft models.Draft) *Reply {
	return &Reply{Mode: ModeEditDraft, Draft: &draft, Content: draft.Content}
}

// IsEditing reports whether the modal edits a saved draft
func (r *Reply) IsEditing() bool {
	return r.Mode == ModeEditDraft
}

// Subject is the subject shown under the modal heading
func (r *Reply) Subject() string {
	if r.Email != nil && r.Email.Subject != "" {
		return r.Email.Subject
	}
	if r.Draft != nil && r.Draft.EmailSubject != "" {
		return r.Draft.EmailSubject
	}
	return "Draft"
}

// Generate asks the assistant for reply text. Edited drafts never call out.
func (r *Reply) Generate(ctx context.Context, gen ReplyGenerator) error {
	if r.Mode != ModeNewReply {
		return nil
	}
	if r.Email == nil {
		r.Generation.Finish(ErrNoEmail)
		return ErrNoEmail
	}

	r.Generation.Start()
	content, err := gen.GenerateReply(ctx, r.Email.ID)
	if err != nil {
		r.Generation.Finish(err)
		return err
	}
	r.Content = content
	r.Generation.Finish(nil)
	return nil
}

// Save persists the edited content as a draft and closes the modal. On
// failure the modal stays open with its content so the user can retry.
func (r *Reply) Save(ctx context.Context, store DraftStore, content string, now time.Time) (models.Draft, error) {
	r.Content = content
	draft := r.buildDraft(now)

	r.Saving.Start()
	if _, err := store.SaveDraft(ctx, draft); err != nil {
		r.Saving.Finish(err)
		return draft, err
	}
	r.Saving.Finish(nil)
	r.Closed = true
	return draft, nil
}

func (r *Reply) buildDraft(now time.Time) models.Draft {
	lastSaved := now.Format(LastSavedLayout)

	if r.Mode == ModeEditDraft && r.Draft != nil {
		draft := *r.Draft
		draft.Content = r.Content
		draft.LastSaved = lastSaved
		return draft
	}

	draft := models.Draft{
		ID:        NewDraftID(now),
		Content:   r.Content,
		LastSaved: lastSaved,
	}
	if r.Email != nil {
		draft.EmailReferenceID = r.Email.ID
		draft.EmailSubject = ReplySubject(r.Email.Subject)
	}
	return draft
}

// NewDraftID derives a draft id from the save time
func NewDraftID(now time.Time) string {
	return fmt.Sprintf("d-%d", now.UnixMilli())
}

// ReplySubject prefixes "Re: " to the subject as it stands
func ReplySubject(subject string) string {
	return "Re: " + subject
}
