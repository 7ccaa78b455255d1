//go:build !integration

package usecase_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
)

// newTestLogger creates a silent zerolog.Logger for use in tests.
func newTestLogger() *zerolog.Logger {
	logger := zerolog.New(io.Discard)
	return &logger
}

// ---- Mock TelegramBotAdapter ----

type MockTelegramBot struct {
	mu      sync.Mutex
	nextID  int
	Sent    []adapter.SendMessageParams
	Edits   []adapter.EditMessageParams
	Answers []adapter.AnswerCallbackParams

	SendMessageFunc func(ctx context.Context, p adapter.SendMessageParams) error
	EditMessageFunc func(ctx context.Context, p adapter.EditMessageParams) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(ctx context.Context, p adapter.SendMessageParams) (model.MessageRef, error) {
	if m.SendMessageFunc != nil {
		if err := m.SendMessageFunc(ctx, p); err != nil {
			return model.MessageRef{}, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Sent = append(m.Sent, p)
	return model.MessageRef{ChatID: p.ChatID, MessageID: m.nextID, HasPhoto: p.PhotoURL != ""}, nil
}

func (m *MockTelegramBot) EditMessage(ctx context.Context, p adapter.EditMessageParams) error {
	if m.EditMessageFunc != nil {
		if err := m.EditMessageFunc(ctx, p); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Edits = append(m.Edits, p)
	return nil
}

func (m *MockTelegramBot) AnswerCallback(_ context.Context, p adapter.AnswerCallbackParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Answers = append(m.Answers, p)
	return nil
}

// ---- Mock BackendGateway ----

// MockBackend keeps users and products in memory and counts calls. Any *Err
// field makes the matching call fail with it.
type MockBackend struct {
	mu       sync.Mutex
	Users    map[model.EntityID]*model.ManagedUser
	Products map[model.EntityID]*model.Product
	Calls    int

	GetUserErr   error
	MutateErr    error
	PublishErr   error
	ListUsersErr error
}

var _ adapter.BackendGateway = (*MockBackend)(nil)

func NewMockBackend() *MockBackend {
	return &MockBackend{
		Users:    map[model.EntityID]*model.ManagedUser{},
		Products: map[model.EntityID]*model.Product{},
	}
}

func (m *MockBackend) ListUsers(_ context.Context, limit int, _ bool) ([]*model.ManagedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.ListUsersErr != nil {
		return nil, m.ListUsersErr
	}
	var out []*model.ManagedUser
	for _, u := range m.Users {
		if len(out) == limit {
			break
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockBackend) GetUser(_ context.Context, id model.EntityID) (*model.ManagedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.GetUserErr != nil {
		return nil, m.GetUserErr
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrBackendUnavailable
	}
	cp := *u
	return &cp, nil
}

func (m *MockBackend) withUser(id model.EntityID, fn func(u *model.ManagedUser)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.MutateErr != nil {
		return m.MutateErr
	}
	u, ok := m.Users[id]
	if !ok {
		return domain.ErrBackendUnavailable
	}
	fn(u)
	return nil
}

func (m *MockBackend) SetUserBlocked(_ context.Context, id model.EntityID, blocked bool) error {
	return m.withUser(id, func(u *model.ManagedUser) { u.Blocked = blocked })
}

func (m *MockBackend) IncrementWarning(_ context.Context, id model.EntityID) (int, error) {
	var n int
	err := m.withUser(id, func(u *model.ManagedUser) { u.Warnings++; n = u.Warnings })
	return n, err
}

func (m *MockBackend) ResetWarnings(_ context.Context, id model.EntityID) error {
	return m.withUser(id, func(u *model.ManagedUser) { u.Warnings = 0 })
}

func (m *MockBackend) DeleteUser(_ context.Context, id model.EntityID) error {
	err := m.withUser(id, func(*model.ManagedUser) {})
	if err == nil {
		m.mu.Lock()
		delete(m.Users, id)
		m.mu.Unlock()
	}
	return err
}

func (m *MockBackend) GetProduct(_ context.Context, id model.EntityID) (*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	p, ok := m.Products[id]
	if !ok {
		return nil, domain.ErrBackendUnavailable
	}
	cp := *p
	return &cp, nil
}

func (m *MockBackend) PublishProduct(_ context.Context, id model.EntityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.PublishErr != nil {
		return m.PublishErr
	}
	p, ok := m.Products[id]
	if !ok {
		return domain.ErrBackendUnavailable
	}
	p.State = model.Published
	return nil
}

func (m *MockBackend) DeleteProduct(_ context.Context, id model.EntityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if _, ok := m.Products[id]; !ok {
		return domain.ErrBackendUnavailable
	}
	delete(m.Products, id)
	return nil
}

func (m *MockBackend) ListPendingProducts(_ context.Context, limit int) ([]*model.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	var out []*model.Product
	for _, p := range m.Products {
		if p.State == model.PendingReview && len(out) < limit {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

// ---- Mock AuditLog ----

type MockAuditLog struct {
	mu      sync.Mutex
	Entries []model.AuditEntry
}

func (m *MockAuditLog) Record(_ context.Context, e *model.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, *e)
	return nil
}
