// Command seed fills the login log with synthetic, chronological logins so a
// development server can be trained right away.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/seed"
	"github.com/joho/godotenv"
)

func main() {

	_ = godotenv.Load()

	opts := seed.Options{}
	flag.StringVar(&opts.Backend, "b", envOr("SECANALYTICS_LOG_STORE_BACKEND", "sqlite"), "log store backend (sqlite|postgres)")
	flag.StringVar(&opts.DSN, "d", envOr("SECANALYTICS_LOG_STORE_DSN", "secanalytics.db"), "log store DSN")
	flag.IntVar(&opts.Count, "n", 500, "number of logins to write")
	flag.IntVar(&opts.Users, "u", 5, "number of distinct users")
	flag.Uint64Var(&opts.Seed, "seed", 42, "random seed")
	days := flag.Int("days", 90, "start this many days ago")
	flag.Parse()

	opts.Start = time.Now().UTC().AddDate(0, 0, -*days)

	logger := logging.NewJSON(os.Stdout, "info")
	ctx := context.Background()

	n, err := seed.Run(ctx, opts, logger)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	logger.Info(ctx, "seeded login log", "written", n)
}

func envOr(name, def string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return def
}
