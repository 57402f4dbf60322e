package loginlogs

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

// SQLiteRepository is the single-file store used when no Postgres DSN is
// configured.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) LoadAll(ctx context.Context) ([]models.LoginEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, ts, ip_address, user_agent, endpoint FROM login_logs ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return scanAll(rows)
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM login_logs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, ev models.LoginEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_logs (user_id, ts, ip_address, user_agent, endpoint) VALUES (?, ?, ?, ?, ?)`,
		ev.UserID, ev.Timestamp, ev.IPAddress, ev.UserAgent, ev.Endpoint)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Trim(ctx context.Context, keep int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM login_logs WHERE id NOT IN (SELECT id FROM login_logs ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
