// Package seed writes synthetic logins into a log store.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secanalytics/internal/synth"
)

type Options struct {
	Backend string
	DSN     string
	Count   int
	Users   int
	Seed    uint64
	Start   time.Time
}

// Run appends opts.Count generated logins in one transaction and returns how
// many were written.
func Run(ctx context.Context, opts Options, logger logging.Logger) (int, error) {
	if opts.Count <= 0 {
		return 0, fmt.Errorf("count must be positive, got %d", opts.Count)
	}

	rm, err := repomanager.New(opts.Backend)
	if err != nil {
		return 0, err
	}
	db, err := repomanager.Open(ctx, rm, opts.DSN)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	logins := synth.New(opts.Seed, opts.Start, opts.Users).Logins(opts.Count)

	err = dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := rm.LoginLogs(tx)
		for _, l := range logins {
			if err := repo.Append(ctx, l); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("write logins: %w", err)
	}

	logger.With("module", "seed").Debug(ctx, "logins written", "count", len(logins), "first", logins[0].Timestamp, "last", logins[len(logins)-1].Timestamp)
	return len(logins), nil
}
