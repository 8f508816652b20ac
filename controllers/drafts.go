package controllers

import (
	"context"

	"zenbox/models"
)

// Drafts loads saved drafts and tracks the one open for editing
type Drafts struct {
	source  DraftSource
	Drafts  []models.Draft
	Editing *models.Draft
	Fetch   Operation
	Removal Operation
}

func NewDrafts(source DraftSource) *Drafts {
	return &Drafts{source: source, Drafts: []models.Draft{}}
}

// Load fetches the drafts. A failure leaves the list empty.
func (d *Drafts) Load(ctx context.Context) error {
	d.Fetch.Start()
	drafts, err := d.source.FetchDrafts(ctx)
	if err != nil {
		d.Drafts = []models.Draft{}
		d.Editing = nil
		d.Fetch.Finish(err)
		return err
	}
	d.Drafts = drafts
	d.Fetch.Finish(nil)
	return nil
}

// Count is the number of loaded drafts
func (d *Drafts) Count() int {
	return len(d.Drafts)
}

// Find returns a loaded draft by id
func (d *Drafts) Find(id string) (models.Draft, bool) {
	for _, draft := range d.Drafts {
		if draft.ID == id {
			return draft, true
		}
	}
	return models.Draft{}, false
}

// Open starts editing a draft. Only one draft is open at a time; opening
// another replaces it.
func (d *Drafts) Open(id string) (*Reply, error) {
	draft, ok := d.Find(id)
	if !ok {
		return nil, ErrDraftNotFound
	}
	d.Editing = &draft
	return NewReplyForDraft(draft), nil
}

// Close ends editing
func (d *Drafts) Close() {
	d.Editing = nil
}

// Delete removes a draft on the backend, then from the loaded list
func (d *Drafts) Delete(ctx context.Context, remover DraftRemover, id string) error {
	d.Removal.Start()
	if err := remover.DeleteDraft(ctx, id); err != nil {
		d.Removal.Finish(err)
		return err
	}

	kept := d.Drafts[:0]
	for _, draft := range d.Drafts {
		if draft.ID != id {
			kept = append(kept, draft)
		}
	}
	d.Drafts = kept
	if d.Editing != nil && d.Editing.ID == id {
		d.Editing = nil
	}
	d.Removal.Finish(nil)
	return nil
}
