package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `id, owner_id, format, from_date, to_date, object_key, size_bytes, status,
	days_logged, days_over_goal, total_calories, avg_calories, created_at, updated_at`

// ReportsStorage хранит метаданные отчётов в таблице reports.
// Сами файлы лежат в blob-хранилище по object_key.
type ReportsStorage struct {
	pool *pgxpool.Pool
}

func NewReportsStorage(pool *pgxpool.Pool) *ReportsStorage {
	return &ReportsStorage{pool: pool}
}

func (s *ReportsStorage) CreateReport(ctx context.Context, r *storage.ReportMeta) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	err := s.pool.QueryRow(ctx, `
		INSERT INTO reports (id, owner_id, format, from_date, to_date, object_key, size_bytes, status,
			days_logged, days_over_goal, total_calories, avg_calories)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		r.ID, r.OwnerID, r.Format, r.FromDate, r.ToDate, r.ObjectKey, r.SizeBytes, r.Status,
		r.DaysLogged, r.DaysOverGoal, r.TotalCalories, r.AvgCalories,
	).Scan(&r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

func (s *ReportsStorage) GetReport(ctx context.Context, id uuid.UUID) (*storage.ReportMeta, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}

	meta, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[storage.ReportMeta])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return meta, nil
}

// ListReports отдаёт отчёты владельца, новые первыми.
func (s *ReportsStorage) ListReports(ctx context.Context, ownerID string, limit, offset int) ([]storage.ReportMeta, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+reportColumns+`
		FROM reports
		WHERE owner_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}

	list, err := pgx.CollectRows(rows, pgx.RowToStructByName[storage.ReportMeta])
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return list, nil
}

func (s *ReportsStorage) DeleteReport(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrReportNotFound
	}
	return nil
}
