package controllers

import (
	"context"

	"zenbox/models"
	"zenbox/utils"
)

// Inbox loads the email list and tracks which email is open
type Inbox struct {
	source   EmailSource
	Emails   []models.Email
	Selected *models.Email
	Fetch    Operation
	Removal  Operation
}

func NewInbox(source EmailSource) *Inbox {
	return &Inbox{source: source, Emails: []models.Email{}}
}

// Load fetches the inbox. A failure leaves the list empty; the error is
// kept on Fetch and returned for logging.
func (i *Inbox) Load(ctx context.Context) error {
	i.Fetch.Start()
	emails, err := i.source.FetchEmails(ctx)
	if err != nil {
		i.Emails = []models.Email{}
		i.Selected = nil
		i.Fetch.Finish(err)
		return err
	}

	for idx := range emails {
		if emails[idx].Preview == "" {
			emails[idx].Preview = utils.Preview(emails[idx].Body, utils.PreviewLength)
		}
	}
	i.Emails = emails
	i.Fetch.Finish(nil)
	return nil
}

// Select opens the email with the given id. An unknown id clears the
// selection.
func (i *Inbox) Select(id string) bool {
	for idx := range i.Emails {
		if i.Emails[idx].ID == id {
			i.Selected = &i.Emails[idx]
			return true
		}
	}
	i.Selected = nil
	return false
}

// Delete removes an email on the backend, then from the loaded list
func (i *Inbox) Delete(ctx context.Context, remover EmailRemover, id string) error {
	i.Removal.Start()
	if err := remover.DeleteEmail(ctx, id); err != nil {
		i.Removal.Finish(err)
		return err
	}

	selectedID := ""
	if i.Selected != nil {
		selectedID = i.Selected.ID
	}

	// Selected points into Emails, so the list is rebuilt, never filtered in place
	kept := make([]models.Email, 0, len(i.Emails))
	for _, e := range i.Emails {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	i.Emails = kept
	if selectedID != "" && selectedID != id {
		i.Select(selectedID)
	} else {
		i.Selected = nil
	}
	i.Removal.Finish(nil)
	return nil
}

// UnreadCount counts emails not yet read
func (i *Inbox) UnreadCount() int {
	n := 0
	for _, e := range i.Emails {
		if !e.Read {
			n++
		}
	}
	return n
}
