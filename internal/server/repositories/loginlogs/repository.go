// Package loginlogs stores successful login records, the training data of
// the outlier model. Records come back in insertion order, which is the
// chronological order they were reported in.
package loginlogs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

type Repository interface {
	// LoadAll returns every record, oldest first. An empty table is not an
	// error.
	LoadAll(ctx context.Context) ([]models.LoginEvent, error)
	Count(ctx context.Context) (int, error)
	Append(ctx context.Context, ev models.LoginEvent) error
	// Trim deletes all but the newest keep records and returns how many
	// were removed.
	Trim(ctx context.Context, keep int) (int64, error)
}

func scanAll(rows *sql.Rows) ([]models.LoginEvent, error) {
	defer rows.Close()

	out := make([]models.LoginEvent, 0)
	for rows.Next() {
		var ev models.LoginEvent
		if err := rows.Scan(&ev.UserID, &ev.Timestamp, &ev.IPAddress, &ev.UserAgent, &ev.Endpoint); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
