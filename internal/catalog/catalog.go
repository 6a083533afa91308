// Package catalog persists named configuration documents. A record is the
// rendered XML plus bookkeeping metadata; the document model itself lives in
// pkg/simconfig and the catalog treats the payload as opaque bytes.
package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Record is one stored configuration document.
type Record struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	XML         []byte    `json:"xml"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ErrNotFound indicates a missing catalog record.
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("configuration %s not found", e.Name)
}

// Store is the persistence contract shared by all catalog backends. Put
// upserts by name; List returns records sorted by name.
type Store interface {
	Put(ctx context.Context, record Record) (Record, error)
	Get(ctx context.Context, name string) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Delete(ctx context.Context, name string) error
	Close() error
}

func validateRecord(record Record) error {
	if strings.TrimSpace(record.Name) == "" {
		return fmt.Errorf("record name required")
	}
	if len(record.XML) == 0 {
		return fmt.Errorf("record payload required")
	}
	return nil
}

// MemoryStore keeps records in process memory. It backs tests and ephemeral
// deployments, and the durable stores hydrate into it on open.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]Record
}

// NewMemoryStore constructs an empty in-memory catalog.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

// Put upserts a record by name, stamping timestamps.
func (s *MemoryStore) Put(_ context.Context, record Record) (Record, error) {
	if err := validateRecord(record); err != nil {
		return Record{}, err
	}
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.records[record.Name]; ok {
		record.CreatedAt = existing.CreatedAt
	} else {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	record.XML = append([]byte(nil), record.XML...)
	s.records[record.Name] = record
	return record, nil
}

// Get returns the named record.
func (s *MemoryStore) Get(_ context.Context, name string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[name]
	if !ok {
		return Record{}, ErrNotFound{Name: name}
	}
	record.XML = append([]byte(nil), record.XML...)
	return record, nil
}

// List returns every record sorted by name.
func (s *MemoryStore) List(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		record.XML = append([]byte(nil), record.XML...)
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes the named record.
func (s *MemoryStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[name]; !ok {
		return ErrNotFound{Name: name}
	}
	delete(s.records, name)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// snapshot returns every record without copying payloads; callers must hold
// no reference after the durable store persists them.
func (s *MemoryStore) snapshot() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// importRecords replaces the in-memory state wholesale.
func (s *MemoryStore) importRecords(records []Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]Record, len(records))
	for _, record := range records {
		s.records[record.Name] = record
	}
}
