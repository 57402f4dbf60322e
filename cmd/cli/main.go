package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/cli"
	"github.com/joho/godotenv"
)

func main() {

	_ = godotenv.Load()

	secret := flag.String("s", os.Getenv("SECANALYTICS_SECRET_KEY"), "JWT secret used by the server")
	ttl := flag.Duration("ttl", time.Hour, "token validity")
	flag.Parse()

	if *secret == "" {
		*secret = "secretKey"
	}

	app := cli.NewApp(os.Stdin, os.Stdout, *secret, *ttl)
	if err := app.Exec(context.Background(), flag.Args()); err != nil {
		log.Fatalf("%v", err)
	}
}
