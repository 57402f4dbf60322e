package loginlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) LoadAll(ctx context.Context) ([]models.LoginEvent, error) {
	query :=
		`SELECT user_id, ts, ip_address, user_agent, endpoint FROM login_logs
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanAll(rows)
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM login_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Append(ctx context.Context, ev models.LoginEvent) error {
	query :=
		`INSERT INTO login_logs (user_id, ts, ip_address, user_agent, endpoint)
		 VALUES ($1, $2, $3, $4, $5)
		 `

	if _, err := r.db.ExecContext(ctx, query, ev.UserID, ev.Timestamp, ev.IPAddress, ev.UserAgent, ev.Endpoint); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Trim(ctx context.Context, keep int) (int64, error) {
	query :=
		`DELETE FROM login_logs
		 WHERE id NOT IN (SELECT id FROM login_logs ORDER BY id DESC LIMIT $1)
		 `

	res, err := r.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
