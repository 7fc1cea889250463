package store

import (
	"context"
	"sort"
	"sync"

	"github.com/five82/jotter/internal/item"
)

// Memory is an in-process Store. It keeps nothing across restarts.
type Memory struct {
	mu     sync.RWMutex
	opts   options
	seq    int64
	items  map[string]memoryRecord
	issued map[string]struct{}
}

type memoryRecord struct {
	seq  int64
	item item.Item
}

// NewMemory returns an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		opts:   applyOptions(opts),
		items:  make(map[string]memoryRecord),
		issued: make(map[string]struct{}),
	}
}

func (m *Memory) Insert(_ context.Context, in item.Input) (item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := m.allocateID()
	if err != nil {
		return item.Item{}, err
	}
	now := m.opts.now().UTC()
	it := item.Item{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	m.seq++
	m.items[id] = memoryRecord{seq: m.seq, item: it}
	m.issued[id] = struct{}{}
	return it, nil
}

func (m *Memory) Find(_ context.Context, id string) (item.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return item.Item{}, &item.NotFoundError{ID: id}
	}
	return rec.item, nil
}

func (m *Memory) FindAll(_ context.Context) ([]item.Item, error) {
	m.mu.RLock()
	recs := make([]memoryRecord, 0, len(m.items))
	for _, rec := range m.items {
		recs = append(recs, rec)
	}
	m.mu.RUnlock()

	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if !a.item.CreatedAt.Equal(b.item.CreatedAt) {
			return a.item.CreatedAt.After(b.item.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]item.Item, len(recs))
	for i, rec := range recs {
		out[i] = rec.item
	}
	return out, nil
}

func (m *Memory) Update(_ context.Context, id string, patch item.Patch) (item.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok {
		return item.Item{}, &item.NotFoundError{ID: id}
	}
	next := patch.Apply(rec.item)
	next.UpdatedAt = nextUpdatedAt(m.opts.now().UTC(), rec.item.UpdatedAt)
	rec.item = next
	m.items[id] = rec
	return next, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return &item.NotFoundError{ID: id}
	}
	delete(m.items, id)
	return nil
}

func (m *Memory) Close() error { return nil }

// allocateID must be called with mu held.
func (m *Memory) allocateID() (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := m.opts.newID()
		if _, taken := m.issued[id]; id != "" && !taken {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
