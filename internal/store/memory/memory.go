// Package memory is an in-memory store implementation used by tests and
// local demos. It mirrors the ordering behavior of the hosted backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/idara-sms/schoolbooks-api/internal/models"
	"github.com/idara-sms/schoolbooks-api/internal/store"
)

type Store struct {
	mu   sync.RWMutex
	data map[string]map[string]store.Document // collection -> id -> doc

	// FailCollections simulates unavailable sources in tests.
	FailCollections map[string]error
}

func New() *Store {
	return &Store{
		data:            make(map[string]map[string]store.Document),
		FailCollections: make(map[string]error),
	}
}

func (s *Store) collection(name string) map[string]store.Document {
	col, ok := s.data[name]
	if !ok {
		col = make(map[string]store.Document)
		s.data[name] = col
	}
	return col
}

func cloneDoc(doc store.Document) store.Document {
	out := make(store.Document, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func docWhen(doc store.Document) time.Time {
	if raw, ok := doc["date"].(string); ok && raw != "" {
		if t := models.ParseWhen(raw); !t.IsZero() {
			return t
		}
	}
	switch v := doc["created_at"].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func (s *Store) List(ctx context.Context, collection string, opts store.ListOptions) ([]store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.FailCollections[collection]; err != nil {
		return nil, err
	}

	col := s.data[collection]
	docs := make([]store.Document, 0, len(col))
	for id, doc := range col {
		out := cloneDoc(doc)
		out["id"] = id
		docs = append(docs, out)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		wi, wj := docWhen(docs[i]), docWhen(docs[j])
		if !wi.Equal(wj) {
			return wi.After(wj)
		}
		si, _ := docs[i]["id"].(string)
		sj, _ := docs[j]["id"].(string)
		return si < sj
	})

	if opts.Limit > 0 && len(docs) > opts.Limit {
		docs = docs[:opts.Limit]
	}
	return docs, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.FailCollections[collection]; err != nil {
		return nil, err
	}
	doc, ok := s.data[collection][id]
	if !ok {
		return nil, models.ErrNotFound
	}
	out := cloneDoc(doc)
	out["id"] = id
	return out, nil
}

func (s *Store) Create(ctx context.Context, collection string, doc store.Document) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailCollections[collection]; err != nil {
		return "", err
	}
	id := uuid.NewString()
	stored := cloneDoc(doc)
	delete(stored, "id")
	s.collection(collection)[id] = stored
	return id, nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailCollections[collection]; err != nil {
		return err
	}
	stored := cloneDoc(doc)
	delete(stored, "id")
	s.collection(collection)[id] = stored
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailCollections[collection]; err != nil {
		return err
	}
	col := s.collection(collection)
	existing, ok := col[id]
	if !ok {
		return models.ErrNotFound
	}
	for k, v := range doc {
		if k == "id" {
			continue
		}
		existing[k] = v
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailCollections[collection]; err != nil {
		return err
	}
	col := s.collection(collection)
	if _, ok := col[id]; !ok {
		return models.ErrNotFound
	}
	delete(col, id)
	return nil
}

func (s *Store) PutMany(ctx context.Context, collection string, docs []store.Document) error {
	for _, doc := range docs {
		id, _ := doc["id"].(string)
		if id == "" {
			id = uuid.NewString()
		}
		if err := s.Put(ctx, collection, id, doc); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Count(ctx context.Context, collection string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.FailCollections[collection]; err != nil {
		return 0, err
	}
	return len(s.data[collection]), nil
}
