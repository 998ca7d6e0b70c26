package registry

import (
	"context"
	"slices"
	"sync"

	"seahorse/internal/domain"
	"seahorse/internal/protocol/handshake"
)

// Memory is an in-process registry. Listing order is by request id.
type Memory struct {
	mu       sync.RWMutex
	requests map[domain.RequestID]domain.FriendRequest
	slots    map[domain.AccountID]string
}

// NewMemory returns an empty Memory registry.
func NewMemory() *Memory {
	return &Memory{
		requests: make(map[domain.RequestID]domain.FriendRequest),
		slots:    make(map[domain.AccountID]string),
	}
}

func (m *Memory) PutFriendRequest(_ context.Context, id domain.RequestID, r domain.FriendRequest) error {
	m.mu.Lock()
	m.requests[id] = r
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetFriendRequest(_ context.Context, id domain.RequestID) (domain.FriendRequest, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.requests[id]
	return r, ok, nil
}

func (m *Memory) ListFriendRequests(_ context.Context, f domain.RequestFilter) ([]domain.FriendRequest, error) {
	m.mu.RLock()
	ids := make([]domain.RequestID, 0, len(m.requests))
	for id, r := range m.requests {
		if f.Match(r) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	out := make([]domain.FriendRequest, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.requests[id])
	}
	m.mu.RUnlock()
	return out, nil
}

func (m *Memory) DeleteFriendRequest(_ context.Context, id domain.RequestID) error {
	m.mu.Lock()
	delete(m.requests, id)
	m.mu.Unlock()
	return nil
}

func (m *Memory) PutEncryptedSlot(_ context.Context, account domain.AccountID, ciphertext string) error {
	m.mu.Lock()
	m.slots[account] = ciphertext
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetEncryptedSlot(_ context.Context, account domain.AccountID) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.slots[account]
	return s, ok, nil
}

func (m *Memory) DeleteEncryptedSlot(_ context.Context, account domain.AccountID) error {
	m.mu.Lock()
	delete(m.slots, account)
	m.mu.Unlock()
	return nil
}

// ClearAccount removes every request involving account, and its slot.
func (m *Memory) ClearAccount(_ context.Context, account domain.AccountID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, r := range m.requests {
		if handshake.Involves(r, account) {
			delete(m.requests, id)
		}
	}
	delete(m.slots, account)
	return nil
}

var (
	_ domain.Registry       = (*Memory)(nil)
	_ domain.AccountClearer = (*Memory)(nil)
)
