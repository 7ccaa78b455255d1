//go:build !integration

package application_test

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"yakmarket-admin-bot/internal/domain"
	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/adapter"
	"yakmarket-admin-bot/internal/usecase"
)

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

	EditMessageFunc func(ctx context.Context, p adapter.EditMessageParams) error
}

var _ adapter.TelegramBotAdapter = (*MockTelegramBot)(nil)

func (m *MockTelegramBot) SendMessage(_ context.Context, p adapter.SendMessageParams) (model.MessageRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Sent = append(m.Sent, p)
	return model.MessageRef{ChatID: p.ChatID, MessageID: 1000 + m.nextID}, nil
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

func (m *MockTelegramBot) lastAnswer() adapter.AnswerCallbackParams {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Answers) == 0 {
		return adapter.AnswerCallbackParams{}
	}
	return m.Answers[len(m.Answers)-1]
}

// ---- Mock UserUseCase ----

// MockUserUseCase holds a single-user store and counts every call that would
// reach the backend.
type MockUserUseCase struct {
	mu    sync.Mutex
	Users map[model.EntityID]*model.ManagedUser
	Calls int
	Err   error

	WarnReasons []string
}

var _ usecase.UserUseCase = (*MockUserUseCase)(nil)

func NewMockUserUseCase(users ...*model.ManagedUser) *MockUserUseCase {
	m := &MockUserUseCase{Users: map[model.EntityID]*model.ManagedUser{}}
	for _, u := range users {
		m.Users[u.ID] = u
	}
	return m
}

func (m *MockUserUseCase) call(id model.EntityID, fn func(u *model.ManagedUser)) (*model.ManagedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.Users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if fn != nil {
		fn(u)
	}
	cp := *u
	return &cp, nil
}

func (m *MockUserUseCase) List(context.Context) ([]*model.ManagedUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]*model.ManagedUser, 0, len(m.Users))
	for _, u := range m.Users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *MockUserUseCase) Get(_ context.Context, id model.EntityID) (*model.ManagedUser, error) {
	return m.call(id, nil)
}

func (m *MockUserUseCase) Block(_ context.Context, _ int64, id model.EntityID) (*model.ManagedUser, error) {
	return m.call(id, func(u *model.ManagedUser) { u.Blocked = true })
}

func (m *MockUserUseCase) Unblock(_ context.Context, _ int64, id model.EntityID) (*model.ManagedUser, error) {
	return m.call(id, func(u *model.ManagedUser) { u.Blocked = false })
}

func (m *MockUserUseCase) Warn(_ context.Context, _ int64, id model.EntityID, reason string) (*model.ManagedUser, error) {
	return m.call(id, func(u *model.ManagedUser) {
		u.Warnings++
		m.WarnReasons = append(m.WarnReasons, reason)
	})
}

func (m *MockUserUseCase) Unwarn(_ context.Context, _ int64, id model.EntityID) (*model.ManagedUser, error) {
	return m.call(id, func(u *model.ManagedUser) { u.Warnings = 0 })
}

func (m *MockUserUseCase) Delete(_ context.Context, _ int64, id model.EntityID) error {
	_, err := m.call(id, nil)
	if err == nil {
		m.mu.Lock()
		delete(m.Users, id)
		m.mu.Unlock()
	}
	return err
}

func (m *MockUserUseCase) Stats(context.Context) (model.UserStats, error) {
	users, err := m.List(context.Background())
	if err != nil {
		return model.UserStats{}, err
	}
	return model.NewUserStats(users), nil
}

// ---- Mock ProductUseCase ----

type MockProductUseCase struct {
	mu       sync.Mutex
	Requests []usecase.ModerationRequest
	Reviews  []model.EntityID

	ApproveFunc func(ctx context.Context, req usecase.ModerationRequest) error
	PendingFunc func(ctx context.Context, limit int) ([]*model.Product, error)
}

var _ usecase.ProductUseCase = (*MockProductUseCase)(nil)

func (m *MockProductUseCase) Approve(ctx context.Context, req usecase.ModerationRequest) error {
	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	m.mu.Unlock()
	if m.ApproveFunc != nil {
		return m.ApproveFunc(ctx, req)
	}
	return nil
}

func (m *MockProductUseCase) Reject(_ context.Context, req usecase.ModerationRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Requests = append(m.Requests, req)
	return nil
}

func (m *MockProductUseCase) Review(_ context.Context, _ int64, id model.EntityID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reviews = append(m.Reviews, id)
	return nil
}

func (m *MockProductUseCase) Pending(ctx context.Context, limit int) ([]*model.Product, error) {
	if m.PendingFunc != nil {
		return m.PendingFunc(ctx, limit)
	}
	return nil, nil
}

// ---- Mock Limiter ----

type MockLimiter struct {
	AllowFunc func(ctx context.Context, operatorID int64, scope string) (bool, error)
}

func (m *MockLimiter) Allow(ctx context.Context, operatorID int64, scope string) (bool, error) {
	return m.AllowFunc(ctx, operatorID, scope)
}

type MockAuditHistory struct {
	ListByEntityFunc func(ctx context.Context, domainName string, id model.EntityID, limit int) ([]*model.AuditEntry, error)
}

func (m *MockAuditHistory) ListByEntity(ctx context.Context, domainName string, id model.EntityID, limit int) ([]*model.AuditEntry, error) {
	if m.ListByEntityFunc != nil {
		return m.ListByEntityFunc(ctx, domainName, id, limit)
	}
	return nil, nil
}
