package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store used for local runs and tests. It can
// be told to fail upcoming writes to a collection.
type MemoryStore struct {
	mu          sync.Mutex
	collections map[string]map[string]map[string]any
	now         func() time.Time
	failures    map[string][]error
	writes      int
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]map[string]any),
		now:         time.Now,
		failures:    make(map[string][]error),
	}
}

// SetClock replaces the clock used to resolve ServerTimestamp.
func (m *MemoryStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// FailNextWrite makes the next write to collection return err. Calls queue up.
func (m *MemoryStore) FailNextWrite(collection string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[collection] = append(m.failures[collection], err)
}

// Writes returns the number of successful writes.
func (m *MemoryStore) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Get returns a copy of the document.
func (m *MemoryStore) Get(_ context.Context, collection, id string) (*Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	cp, err := normalizeMap(data)
	if err != nil {
		return nil, err
	}
	return &Document{ID: id, Data: cp}, nil
}

// Query scans the collection in id order.
func (m *MemoryStore) Query(_ context.Context, collection string, opts QueryOptions) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.collections[collection]))
	for id := range m.collections[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var docs []Document
	for _, id := range ids {
		data := m.collections[collection][id]
		ok, err := matches(data, opts.Where)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		cp, err := normalizeMap(data)
		if err != nil {
			return nil, err
		}
		docs = append(docs, Document{ID: id, Data: cp})
	}
	return orderAndLimit(docs, opts), nil
}

// Create stores data under a random id.
func (m *MemoryStore) Create(ctx context.Context, collection string, data map[string]any) (string, error) {
	id := uuid.NewString()
	if err := m.Set(ctx, collection, id, data); err != nil {
		return "", err
	}
	return id, nil
}

// Set replaces the document.
func (m *MemoryStore) Set(_ context.Context, collection, id string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}
	doc, err := applyWrite(nil, data, m.now())
	if err != nil {
		return err
	}
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]map[string]any)
	}
	m.collections[collection][id] = doc
	m.writes++
	return nil
}

// Update merges partial into an existing document.
func (m *MemoryStore) Update(_ context.Context, collection, id string, partial map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(collection); err != nil {
		return err
	}
	current, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	doc, err := applyWrite(current, partial, m.now())
	if err != nil {
		return err
	}
	m.collections[collection][id] = doc
	m.writes++
	return nil
}

func (m *MemoryStore) takeFailure(collection string) error {
	queue := m.failures[collection]
	if len(queue) == 0 {
		return nil
	}
	err := queue[0]
	m.failures[collection] = queue[1:]
	return err
}
