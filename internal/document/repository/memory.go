package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qualikit/qualikit/backend/go-services/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
	// ErrStaleVersion: the snapshot's rev no longer matches the stored
	// record; the caller must re-read before retrying.
	ErrStaleVersion = errors.New("document version is stale")
)

// MemoryRepo is an in-memory document store with the same load /
// compare-and-swap contract as the Mongo repo. Used for unit tests and for
// running the service without a configured MongoDB.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*document.ControlledDocument
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*document.ControlledDocument)}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.ControlledDocument) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = "qdoc_" + time.Now().Format("20060102T150405.000000000")
	}
	if _, exists := m.store[doc.ID]; exists {
		return "", fmt.Errorf("document %s already exists", doc.ID)
	}
	doc.Rev = 1
	cp := *doc
	m.store[doc.ID] = &cp
	return doc.ID, nil
}

// Get returns a snapshot copy; mutating the result never touches the store.
func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.ControlledDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.store[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *MemoryRepo) List(ctx context.Context) ([]*document.ControlledDocument, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*document.ControlledDocument, 0, len(m.store))
	for _, d := range m.store {
		cp := *d
		out = append(out, &cp)
	}
	return out, nil
}

// CompareAndSwap writes doc back only if the stored rev still equals
// doc.Rev. On success doc.Rev is advanced to the newly stored value.
func (m *MemoryRepo) CompareAndSwap(ctx context.Context, doc *document.ControlledDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[doc.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Rev != doc.Rev {
		return ErrStaleVersion
	}
	doc.Rev++
	cp := *doc
	m.store[doc.ID] = &cp
	return nil
}
