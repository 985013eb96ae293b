package member

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu      sync.RWMutex
	nextID  int
	records map[int]Record
}

// NewMemoryRepository builds an in-memory member store for development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{nextID: 1, records: make(map[int]Record)}
}

func (r *memoryRepository) Create(_ context.Context, name, email string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.records[id] = Record{ID: id, UserName: name, EmailID: email}
	return id, nil
}

func (r *memoryRepository) FindByID(_ context.Context, id int) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

func (r *memoryRepository) List(_ context.Context) ([]Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	records := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (r *memoryRepository) Update(_ context.Context, id int, patch Patch) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	if patch.UserName != nil {
		rec.UserName = *patch.UserName
	}
	if patch.EmailID != nil {
		rec.EmailID = *patch.EmailID
	}
	if patch.DoB != nil {
		rec.DoB = *patch.DoB
	}
	r.records[id] = rec
	return rec, nil
}
