// Package registry holds the in-process message registry.
package registry

import (
	"context"
	"sync"

	"yakmarket-admin-bot/internal/domain/model"
	"yakmarket-admin-bot/internal/domain/ports/repository"
)

var _ repository.MessageRegistry = (*Memory)(nil)

// Memory is a mutex-guarded registry. Records live until Clear or process
// exit.
type Memory struct {
	mu       sync.RWMutex
	products map[model.EntityID][]model.MessageRef
	views    map[model.EntityID]map[int64]model.MessageRef
}

func NewMemory() *Memory {
	return &Memory{
		products: make(map[model.EntityID][]model.MessageRef),
		views:    make(map[model.EntityID]map[int64]model.MessageRef),
	}
}

func (m *Memory) AppendProductMessage(_ context.Context, productID model.EntityID, ref model.MessageRef) error {
	m.mu.Lock()
	m.products[productID] = append(m.products[productID], ref)
	m.mu.Unlock()
	return nil
}

// ProductMessages returns a copy; callers may edit messages without holding
// the lock.
func (m *Memory) ProductMessages(_ context.Context, productID model.EntityID) ([]model.MessageRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := m.products[productID]
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]model.MessageRef, len(refs))
	copy(out, refs)
	return out, nil
}

func (m *Memory) RemoveProduct(_ context.Context, productID model.EntityID) error {
	m.mu.Lock()
	delete(m.products, productID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) SetUserView(_ context.Context, userID model.EntityID, ref model.MessageRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	byChat, ok := m.views[userID]
	if !ok {
		byChat = make(map[int64]model.MessageRef)
		m.views[userID] = byChat
	}
	byChat[ref.ChatID] = ref
	return nil
}

func (m *Memory) UserView(_ context.Context, userID model.EntityID, chatID int64) (model.MessageRef, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ref, ok := m.views[userID][chatID]
	return ref, ok, nil
}

func (m *Memory) RemoveUserView(_ context.Context, userID model.EntityID) error {
	m.mu.Lock()
	delete(m.views, userID)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Clear(context.Context) error {
	m.mu.Lock()
	m.products = make(map[model.EntityID][]model.MessageRef)
	m.views = make(map[model.EntityID]map[int64]model.MessageRef)
	m.mu.Unlock()
	return nil
}
