package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/google/uuid"
)

// ReportsStorage держит отчёты в памяти вместе с их содержимым (Data).
// byOwner хранит id в порядке создания, поэтому список не нужно сортировать.
type ReportsStorage struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]storage.ReportMeta
	byOwner map[string][]uuid.UUID
	now     func() time.Time
}

func NewReportsStorage() *ReportsStorage {
	return &ReportsStorage{
		byID:    make(map[uuid.UUID]storage.ReportMeta),
		byOwner: make(map[string][]uuid.UUID),
		now:     time.Now,
	}
}

func (s *ReportsStorage) CreateReport(ctx context.Context, r *storage.ReportMeta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	r.CreatedAt = s.now()
	r.UpdatedAt = r.CreatedAt

	s.byID[r.ID] = *r
	s.byOwner[r.OwnerID] = append(s.byOwner[r.OwnerID], r.ID)
	return nil
}

func (s *ReportsStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byID[id]
	if !ok {
		return nil, storage.ErrReportNotFound
	}
	return &r, nil
}

// ListReports отдаёт страницу отчётов владельца, новые первыми.
// limit <= 0 означает "до конца".
func (s *ReportsStorage) ListReports(ctx context.Context, ownerID string, limit, offset int) ([]storage.ReportMeta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byOwner[ownerID]
	out := []storage.ReportMeta{}
	for i := len(ids) - 1 - offset; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, s.byID[ids[i]])
	}
	return out, nil
}

func (s *ReportsStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.byID[id]
	if !ok {
		return storage.ErrReportNotFound
	}
	delete(s.byID, id)
	s.byOwner[r.OwnerID] = slices.DeleteFunc(s.byOwner[r.OwnerID], func(v uuid.UUID) bool { return v == id })
	return nil
}
