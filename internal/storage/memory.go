package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStorage keeps records in process memory. Issued short ids are
// remembered across deletes so they are never handed out twice.
type MemoryStorage struct {
	mu      sync.RWMutex
	byID    map[string]Record
	byShort map[string]string
	issued  map[string]struct{}
}

func CreateMemoryStorage() (*MemoryStorage, error) {
	return &MemoryStorage{
		byID:    make(map[string]Record),
		byShort: make(map[string]string),
		issued:  make(map[string]struct{}),
	}, nil
}

func (m *MemoryStorage) Insert(_ context.Context, record Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.issued[record.ShortID]; taken {
		return nil, ErrConflict
	}

	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	m.issued[record.ShortID] = struct{}{}
	m.byID[record.ID] = record
	m.byShort[record.ShortID] = record.ID

	return &record, nil
}

func (m *MemoryStorage) Update(_ context.Context, record Record) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[record.ID]; !exists {
		return nil, ErrNotFound
	}

	m.byID[record.ID] = record
	return &record, nil
}

func (m *MemoryStorage) FindByID(_ context.Context, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, exists := m.byID[id]
	if !exists {
		return nil, ErrNotFound
	}
	return &record, nil
}

func (m *MemoryStorage) FindByShortID(_ context.Context, shortID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, exists := m.byShort[shortID]
	if !exists {
		return nil, ErrNotFound
	}

	record := m.byID[id]
	return &record, nil
}

func (m *MemoryStorage) All(_ context.Context) ([]Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]Record, 0, len(m.byID))
	for _, record := range m.byID {
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID < records[j].ID
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})

	return records, nil
}

func (m *MemoryStorage) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, exists := m.byID[id]
	if !exists {
		return ErrNotFound
	}

	delete(m.byID, id)
	delete(m.byShort, record.ShortID)
	// the short id stays in the issued set
	return nil
}

func (m *MemoryStorage) DeleteAll(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.byID = make(map[string]Record)
	m.byShort = make(map[string]string)
	return nil
}

func (m *MemoryStorage) PingContext(_ context.Context) error {
	return errors.ErrUnsupported
}
