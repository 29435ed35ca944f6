package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fdg312/calorie-diary/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStorage - Postgres реализация Storage
type PostgresStorage struct {
	pool    *pgxpool.Pool
	reports *ReportsStorage
}

// New открывает пул соединений и проверяет доступность базы
func New(ctx context.Context, databaseURL string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStorage{
		pool:    pool,
		reports: NewReportsStorage(pool),
	}, nil
}

// LoadDiary читает payload из diary_states; отсутствие строки не ошибка
func (p *PostgresStorage) LoadDiary(ctx context.Context, ownerID string) ([]byte, error) {
	query := `SELECT payload FROM diary_states WHERE owner_id = $1`

	var payload []byte
	err := p.pool.QueryRow(ctx, query, ownerID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load diary: %w", err)
	}
	return payload, nil
}

// SaveDiary перезаписывает дневник владельца целиком
func (p *PostgresStorage) SaveDiary(ctx context.Context, ownerID string, data []byte) error {
	query := `
		INSERT INTO diary_states (owner_id, payload, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (owner_id) DO UPDATE
		SET payload = EXCLUDED.payload, updated_at = NOW()
	`

	if _, err := p.pool.Exec(ctx, query, ownerID, data); err != nil {
		return fmt.Errorf("failed to save diary: %w", err)
	}
	return nil
}

func (p *PostgresStorage) GetReportsStorage() storage.ReportsStorage {
	return p.reports
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}
