package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

// DiaryStorage хранит сериализованный дневник владельца одним блобом.
// LoadDiary возвращает (nil, nil), если дневник ещё не сохранялся.
type DiaryStorage interface {
	LoadDiary(ctx context.Context, ownerID string) ([]byte, error)
	SaveDiary(ctx context.Context, ownerID string, data []byte) error
}

// Storage - хранилище приложения: дневники, метаданные отчётов
type Storage interface {
	DiaryStorage

	GetReportsStorage() ReportsStorage

	// Close закрывает соединение (для Postgres)
	Close() error
}

// ReportsStorage - интерфейс для работы с отчётами
type ReportsStorage interface {
	// CreateReport создаёт новый отчёт (metadata + optional data for memory mode)
	CreateReport(ctx context.Context, report *ReportMeta) error

	// GetReport возвращает отчёт по ID или ErrReportNotFound
	GetReport(ctx context.Context, id uuid.UUID) (*ReportMeta, error)

	// ListReports возвращает отчёты владельца, новые первыми
	ListReports(ctx context.Context, ownerID string, limit, offset int) ([]ReportMeta, error)

	// DeleteReport удаляет отчёт (metadata и данные)
	DeleteReport(ctx context.Context, id uuid.UUID) error
}

// ReportMeta - метаданные отчёта и сводка за период на момент генерации.
// Теги db соответствуют колонкам таблицы reports.
type ReportMeta struct {
	ID        uuid.UUID `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Format    string    `db:"format"`    // pdf | csv
	FromDate  string    `db:"from_date"` // YYYY-MM-DD
	ToDate    string    `db:"to_date"`
	ObjectKey *string   `db:"object_key"` // nil when the bytes live in Data
	SizeBytes int64     `db:"size_bytes"`
	Status    string    `db:"status"`

	DaysLogged    int `db:"days_logged"`
	DaysOverGoal  int `db:"days_over_goal"`
	TotalCalories int `db:"total_calories"`
	AvgCalories   int `db:"avg_calories"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Data      []byte    `db:"-"` // memory mode only
}
