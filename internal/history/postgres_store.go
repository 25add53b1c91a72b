package history

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) Store {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) LogChat(ctx context.Context, log *ChatLog) error {
	query := `
		INSERT INTO chat_logs (tenant_id, request_id, message, response, language, provider, model, latency_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := s.db.QueryRow(ctx, query,
		log.TenantID, log.RequestID, log.Message, log.Response,
		log.Language, log.Provider, log.Model, log.LatencyMs,
	).Scan(&log.ID, &log.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to log chat: %w", err)
	}

	return nil
}

func (s *PostgresStore) GetByTenant(ctx context.Context, tenantID string, from, to time.Time) ([]*ChatLog, error) {
	query := `
		SELECT id, tenant_id, request_id, message, response, language, provider, model, latency_ms, created_at
		FROM chat_logs
		WHERE tenant_id = $1 AND created_at BETWEEN $2 AND $3
		ORDER BY created_at DESC
	`
	rows, err := s.db.Query(ctx, query, tenantID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat logs: %w", err)
	}
	defer rows.Close()

	var logs []*ChatLog
	for rows.Next() {
		var l ChatLog
		err := rows.Scan(
			&l.ID, &l.TenantID, &l.RequestID, &l.Message, &l.Response,
			&l.Language, &l.Provider, &l.Model, &l.LatencyMs, &l.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan chat log: %w", err)
		}
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat logs: %w", err)
	}

	return logs, nil
}

func (s *PostgresStore) CountByTenant(ctx context.Context, tenantID string, from, to time.Time) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM chat_logs
		WHERE tenant_id = $1 AND created_at BETWEEN $2 AND $3
	`
	var total int64
	err := s.db.QueryRow(ctx, query, tenantID, from, to).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to count chat logs: %w", err)
	}

	return total, nil
}
