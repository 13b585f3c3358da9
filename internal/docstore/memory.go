package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps documents in process. It backs the "memory" driver and tests.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	collections map[string]map[string]memDoc
	seq         int64
	now         func() time.Time
}

type memDoc struct {
	doc Document
	seq int64
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{collections: map[string]map[string]memDoc{}, now: time.Now}}
}

// WithClock overrides the timestamp source.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	if now != nil {
		m.mu.Lock()
		m.state.now = now
		m.mu.Unlock()
	}
	return m
}

func (m *MemoryStore) List(ctx context.Context, collection string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.list(collection), nil
}

func (m *MemoryStore) Get(ctx context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.get(collection, id)
}

func (m *MemoryStore) Insert(ctx context.Context, collection, id string, data any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.insert(collection, id, data)
}

func (m *MemoryStore) Put(ctx context.Context, collection, id string, data any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.put(collection, id, data)
}

func (m *MemoryStore) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.merge(collection, id, fields)
}

func (m *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.delete(collection, id)
	return nil
}

func (m *MemoryStore) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.deleteCollection(collection), nil
}

func (m *MemoryStore) Count(ctx context.Context, collection string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.state.collections[collection])), nil
}

// WithTx runs fn against a private copy and publishes it only when fn
// succeeds. Other callers block until the transaction finishes.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	draft := m.state.clone()
	if err := fn(ctx, &memTx{state: draft}); err != nil {
		return err
	}
	m.state = draft
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error { return ctx.Err() }

// memTx operates on a draft state while the parent lock is held.
type memTx struct {
	state *memState
}

func (t *memTx) List(ctx context.Context, collection string) ([]Document, error) {
	return t.state.list(collection), nil
}

func (t *memTx) Get(ctx context.Context, collection, id string) (Document, error) {
	return t.state.get(collection, id)
}

func (t *memTx) Insert(ctx context.Context, collection, id string, data any) (string, error) {
	return t.state.insert(collection, id, data)
}

func (t *memTx) Put(ctx context.Context, collection, id string, data any) error {
	return t.state.put(collection, id, data)
}

func (t *memTx) Merge(ctx context.Context, collection, id string, fields map[string]any) error {
	return t.state.merge(collection, id, fields)
}

func (t *memTx) Delete(ctx context.Context, collection, id string) error {
	t.state.delete(collection, id)
	return nil
}

func (t *memTx) DeleteCollection(ctx context.Context, collection string) (int64, error) {
	return t.state.deleteCollection(collection), nil
}

func (t *memTx) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(t.state.collections[collection])), nil
}

func (t *memTx) WithTx(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return fn(ctx, t)
}

func (t *memTx) Ping(ctx context.Context) error { return ctx.Err() }

func (s *memState) list(collection string) []Document {
	docs := s.collections[collection]
	entries := make([]memDoc, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, d)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	out := make([]Document, len(entries))
	for i, e := range entries {
		out[i] = copyDoc(e.doc)
	}
	return out
}

func (s *memState) get(collection, id string) (Document, error) {
	d, ok := s.collections[collection][id]
	if !ok {
		return Document{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return copyDoc(d.doc), nil
}

func (s *memState) insert(collection, id string, data any) (string, error) {
	if id == "" {
		id = uuid.NewString()
	}
	if err := validName(collection, id); err != nil {
		return "", err
	}
	if _, exists := s.collections[collection][id]; exists {
		return "", fmt.Errorf("%s/%s: %w", collection, id, ErrDuplicate)
	}
	return id, s.put(collection, id, data)
}

func (s *memState) put(collection, id string, data any) error {
	if err := validName(collection, id); err != nil {
		return err
	}
	raw, err := encode(data)
	if err != nil {
		return err
	}
	now := s.now()
	docs := s.collections[collection]
	if docs == nil {
		docs = map[string]memDoc{}
		s.collections[collection] = docs
	}
	entry, exists := docs[id]
	if !exists {
		s.seq++
		entry = memDoc{seq: s.seq, doc: Document{ID: id, CreatedAt: now}}
	}
	entry.doc.Data = append(json.RawMessage(nil), raw...)
	entry.doc.UpdatedAt = now
	docs[id] = entry
	return nil
}

func (s *memState) merge(collection, id string, fields map[string]any) error {
	entry, ok := s.collections[collection][id]
	if !ok {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	var current map[string]json.RawMessage
	if err := json.Unmarshal(entry.doc.Data, &current); err != nil {
		return fmt.Errorf("docstore: merge %s: %w", id, err)
	}
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("docstore: merge field %s: %w", k, err)
		}
		current[k] = raw
	}
	return s.put(collection, id, current)
}

func (s *memState) delete(collection, id string) {
	delete(s.collections[collection], id)
}

func (s *memState) deleteCollection(collection string) int64 {
	n := int64(len(s.collections[collection]))
	delete(s.collections, collection)
	return n
}

func (s *memState) clone() *memState {
	out := &memState{collections: make(map[string]map[string]memDoc, len(s.collections)), seq: s.seq, now: s.now}
	for name, docs := range s.collections {
		copied := make(map[string]memDoc, len(docs))
		for id, d := range docs {
			copied[id] = memDoc{seq: d.seq, doc: copyDoc(d.doc)}
		}
		out.collections[name] = copied
	}
	return out
}

func copyDoc(d Document) Document {
	d.Data = append(json.RawMessage(nil), d.Data...)
	return d
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*memTx)(nil)
)
