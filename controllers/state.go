// Package controllers holds the page state machines. Handlers build a
// controller per request (the chat transcript lives per session), drive it
// against the assistant API and render its fields.
package controllers

import (
	"context"
	"errors"

	"zenbox/models"
)

// State is the lifecycle of one asynchronous operation
type State int

const (
	StateIdle State = iota
	StateLoading
	StateError
	StateSuccess
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateError:
		return "error"
	case StateSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// Operation tracks one async call: idle → loading → error | success.
type Operation struct {
	State State
	Err   error
}

// Start moves the operation to loading and forgets any previous error
func (o *Operation) Start() {
	o.State = StateLoading
	o.Err = nil
}

// Finish records the outcome of the call
func (o *Operation) Finish(err error) {
	if err != nil {
		o.State = StateError
		o.Err = err
		return
	}
	o.State = StateSuccess
	o.Err = nil
}

func (o Operation) Loading() bool   { return o.State == StateLoading }
func (o Operation) Failed() bool    { return o.State == StateError }
func (o Operation) Succeeded() bool { return o.State == StateSuccess }

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrSendInFlight   = errors.New("a message is already being answered")
	ErrUnknownSection = errors.New("unknown prompt section")
	ErrNotLoaded      = errors.New("prompts are not loaded")
	ErrDraftNotFound  = errors.New("draft not found")
	ErrNoEmail        = errors.New("no email to reply to")
)

// The API surface each controller needs. *api.Client satisfies all of them.

type EmailSource interface {
	FetchEmails(ctx context.Context) ([]models.Email, error)
}

type EmailRemover interface {
	DeleteEmail(ctx context.Context, id string) error
}

type DraftSource interface {
	FetchDrafts(ctx context.Context) ([]models.Draft, error)
}

type DraftRemover interface {
	DeleteDraft(ctx context.Context, id string) error
}

type DraftStore interface {
	SaveDraft(ctx context.Context, draft models.Draft) (models.Draft, error)
}

type ReplyGenerator interface {
	GenerateReply(ctx context.Context, emailID string) (string, error)
}

type PromptStore interface {
	FetchPrompts(ctx context.Context) (models.Prompts, error)
	UpdatePrompts(ctx context.Context, prompts models.Prompts) (models.Prompts, error)
	ResetPrompts(ctx context.Context) (models.Prompts, error)
}

type ChatQuerier interface {
	QueryChat(ctx context.Context, query string) (string, error)
}
