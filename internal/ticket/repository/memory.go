package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/ticket"
)

var (
	ErrNotFound     = errors.New("ticket not found")
	ErrStaleVersion = errors.New("ticket version is stale")
)

// MemoryRepo is the in-memory ticket store; same load / compare-and-swap
// contract as the Mongo repo.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*ticket.RequestTicket
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*ticket.RequestTicket)}
}

func (m *MemoryRepo) Create(ctx context.Context, t *ticket.RequestTicket) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID == "" {
		t.ID = "qtkt_" + time.Now().Format("20060102T150405.000000000")
	}
	if _, exists := m.store[t.ID]; exists {
		return "", fmt.Errorf("ticket %s already exists", t.ID)
	}
	t.Rev = 1
	cp := *t
	m.store[t.ID] = &cp
	return t.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*ticket.RequestTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *MemoryRepo) ListByArea(ctx context.Context, areaID string) ([]*ticket.RequestTicket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*ticket.RequestTicket{}
	for _, t := range m.store {
		if t.TargetAreaID == areaID {
			cp := *t
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *MemoryRepo) CompareAndSwap(ctx context.Context, t *ticket.RequestTicket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[t.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Rev != t.Rev {
		return ErrStaleVersion
	}
	t.Rev++
	cp := *t
	m.store[t.ID] = &cp
	return nil
}
