package memory

import (
	"context"
	"sync"

	"github.com/fdg312/calorie-diary/internal/storage"
)

// MemoryStorage - in-memory реализация Storage
type MemoryStorage struct {
	mu      sync.RWMutex
	diaries map[string][]byte
	reports *ReportsStorage
}

// New создаёт пустой MemoryStorage
func New() *MemoryStorage {
	return &MemoryStorage{
		diaries: make(map[string][]byte),
		reports: NewReportsStorage(),
	}
}

func (m *MemoryStorage) LoadDiary(ctx context.Context, ownerID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.diaries[ownerID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryStorage) SaveDiary(ctx context.Context, ownerID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.diaries[ownerID] = append([]byte(nil), data...)
	return nil
}

func (m *MemoryStorage) GetReportsStorage() storage.ReportsStorage {
	return m.reports
}

func (m *MemoryStorage) Close() error {
	return nil
}
