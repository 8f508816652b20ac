package controllers

import (
	"context"

	"github.com/stretchr/testify/mock"

	"zenbox/models"
)

// MockAssistant implements every API interface the controllers consume
type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) FetchEmails(ctx context.Context) ([]models.Email, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Email), args.Error(1)
}

func (m *MockAssistant) DeleteEmail(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAssistant) FetchDrafts(ctx context.Context) ([]models.Draft, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Draft), args.Error(1)
}

func (m *MockAssistant) DeleteDraft(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockAssistant) SaveDraft(ctx context.Context, draft models.Draft) (models.Draft, error) {
	args := m.Called(ctx, draft)
	return args.Get(0).(models.Draft), args.Error(1)
}

func (m *MockAssistant) GenerateReply(ctx context.Context, emailID string) (string, error) {
	args := m.Called(ctx, emailID)
	return args.String(0), args.Error(1)
}

func (m *MockAssistant) FetchPrompts(ctx context.Context) (models.Prompts, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Prompts), args.Error(1)
}

func (m *MockAssistant) UpdatePrompts(ctx context.Context, prompts models.Prompts) (models.Prompts, error) {
	args := m.Called(ctx, prompts)
	return args.Get(0).(models.Prompts), args.Error(1)
}

func (m *MockAssistant) ResetPrompts(ctx context.Context) (models.Prompts, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.Prompts), args.Error(1)
}

func (m *MockAssistant) QueryChat(ctx context.Context, query string) (string, error) {
	args := m.Called(ctx, query)
	return args.String(0), args.Error(1)
}
