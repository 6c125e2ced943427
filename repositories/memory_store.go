package repositories

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryCollection struct {
	order []string
	docs  map[string]map[string]interface{}
}

// MemoryStore keeps documents in process. Listing returns insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*memoryCollection
	now         func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]*memoryCollection),
		now:         time.Now,
	}
}

func (s *MemoryStore) collection(path string, create bool) *memoryCollection {
	path = strings.Trim(path, "/")
	coll, ok := s.collections[path]
	if !ok && create {
		coll = &memoryCollection{docs: make(map[string]map[string]interface{})}
		s.collections[path] = coll
	}
	return coll
}

func (s *MemoryStore) GetDocument(ctx context.Context, docPath string) (*Document, error) {
	collPath, id, err := splitDocPath(docPath)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collection(collPath, false)
	if coll == nil {
		return nil, ErrNotFound
	}
	fields, ok := coll.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: copyFields(fields)}, nil
}

func (s *MemoryStore) ListDocuments(ctx context.Context, collectionPath string) ([]Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	coll := s.collection(collectionPath, false)
	if coll == nil {
		return []Document{}, nil
	}
	docs := make([]Document, 0, len(coll.order))
	for _, id := range coll.order {
		docs = append(docs, Document{ID: id, Fields: copyFields(coll.docs[id])})
	}
	return docs, nil
}

func (s *MemoryStore) CreateDocument(ctx context.Context, collectionPath string, fields map[string]interface{}) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	coll := s.collection(collectionPath, true)
	coll.order = append(coll.order, id)
	coll.docs[id] = s.resolve(fields)
	return id, nil
}

func (s *MemoryStore) UpsertDocument(ctx context.Context, collectionPath, id string, fields map[string]interface{}, merge bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	coll := s.collection(collectionPath, true)
	existing, ok := coll.docs[id]
	if !ok {
		coll.order = append(coll.order, id)
		coll.docs[id] = s.resolve(fields)
		return nil
	}
	if !merge {
		coll.docs[id] = s.resolve(fields)
		return nil
	}
	for k, v := range s.resolve(fields) {
		existing[k] = v
	}
	return nil
}

func (s *MemoryStore) DeleteDocument(ctx context.Context, collectionPath, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Deleting a missing document is not an error, matching the hosted store
	coll := s.collection(collectionPath, false)
	if coll == nil {
		return nil
	}
	if _, ok := coll.docs[id]; !ok {
		return nil
	}
	delete(coll.docs, id)
	for i, existing := range coll.order {
		if existing == id {
			coll.order = append(coll.order[:i], coll.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) resolve(fields map[string]interface{}) map[string]interface{} {
	out := copyFields(fields)
	for k, v := range out {
		if _, ok := v.(serverTimestamp); ok {
			out[k] = s.now().UTC()
		}
	}
	return out
}

func copyFields(fields map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch list := v.(type) {
		case []interface{}:
			v = append([]interface{}(nil), list...)
		case []string:
			v = append([]string(nil), list...)
		}
		out[k] = v
	}
	return out
}
