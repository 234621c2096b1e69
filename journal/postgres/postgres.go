// Package postgres реализует хранилище журнала отправок поверх PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/x-research-team/mediator/journal"
)

const (
	// SQL-запрос для создания таблицы журнала.
	// Индекс по статусу и времени создания для быстрой выборки записей.
	createTableQuery = `
CREATE TABLE IF NOT EXISTS dispatch_journal (
    id UUID PRIMARY KEY,
    request_type VARCHAR(255) NOT NULL,
    payload JSONB,
    metadata JSONB,
    status VARCHAR(50) NOT NULL,
    error TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL,
    completed_at TIMESTAMPTZ NOT NULL,
    duration_ns BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dispatch_journal_status_created_at ON dispatch_journal (status, created_at);
`

	// SQL-запрос для вставки новой записи.
	insertEntryQuery = `
INSERT INTO dispatch_journal (id, request_type, payload, metadata, status, error, created_at, completed_at, duration_ns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

	// SQL-запрос для выборки записей с указанным статусом, от новых к старым.
	fetchEntriesQuery = `
SELECT id, request_type, payload, metadata, status, error, created_at, completed_at, duration_ns
FROM dispatch_journal
WHERE status = $1
ORDER BY created_at DESC
LIMIT $2;
`
)

// PostgresStorage представляет собой реализацию хранилища журнала для PostgreSQL.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgresStorage создает новый экземпляр PostgresStorage.
// Он также выполняет миграцию, создавая необходимую таблицу, если она не существует.
func NewPostgresStorage(ctx context.Context, pool *pgxpool.Pool) (*PostgresStorage, error) {
	if _, err := pool.Exec(ctx, createTableQuery); err != nil {
		return nil, fmt.Errorf("не удалось создать таблицу dispatch_journal: %w", err)
	}
	return &PostgresStorage{pool: pool}, nil
}

// Save сохраняет запись журнала, используя пул соединений.
func (s *PostgresStorage) Save(ctx context.Context, entry *journal.Entry) error {
	return s.save(ctx, s.pool, entry)
}

// SaveTx сохраняет запись журнала в рамках предоставленного Querier
// (транзакции или пула).
func (s *PostgresStorage) SaveTx(ctx context.Context, q Querier, entry *journal.Entry) error {
	return s.save(ctx, q, entry)
}

func (s *PostgresStorage) save(ctx context.Context, q Querier, entry *journal.Entry) error {
	metadata, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать метаданные: %w", err)
	}

	_, err = q.Exec(ctx, insertEntryQuery,
		entry.ID,
		entry.RequestType,
		entry.Payload,
		metadata,
		entry.Status,
		entry.Error,
		entry.CreatedAt,
		entry.CompletedAt,
		entry.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("не удалось сохранить запись в журнале: %w", err)
	}

	return nil
}

// Fetch извлекает записи с указанным статусом, от новых к старым.
func (s *PostgresStorage) Fetch(ctx context.Context, status string, limit int) ([]*journal.Entry, error) {
	rows, err := s.pool.Query(ctx, fetchEntriesQuery, status, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось извлечь записи из журнала: %w", err)
	}
	defer rows.Close()

	entries := make([]*journal.Entry, 0)
	for rows.Next() {
		var entry journal.Entry
		var metadata []byte
		var durationNs int64
		if err := rows.Scan(
			&entry.ID,
			&entry.RequestType,
			&entry.Payload,
			&metadata,
			&entry.Status,
			&entry.Error,
			&entry.CreatedAt,
			&entry.CompletedAt,
			&durationNs,
		); err != nil {
			return nil, fmt.Errorf("не удалось сканировать запись: %w", err)
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &entry.Metadata); err != nil {
				return nil, fmt.Errorf("не удалось десериализовать метаданные: %w", err)
			}
		}
		entry.Duration = time.Duration(durationNs)
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка при итерации по записям: %w", err)
	}

	return entries, nil
}
