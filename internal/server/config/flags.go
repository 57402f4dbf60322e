package config

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/secanalytics/internal/flagx"
)

var serverFlags = []string{
	"-a", "-g", "-l", "-b", "-d", "-k", "-m", "-o", "-s", "-t", "-r", "-n",
	"-kafka-brokers", "-kafka-topic", "-redis-addr", "-s3-bucket",
}

// parseFlags overlays selected Config fields from command-line flags.
//
//	-a string    HTTP bind address (":5001")
//	-g string    gRPC health bind address
//	-l string    log level
//	-b string    log store backend (sqlite|postgres)
//	-d string    log store DSN
//	-k int       login log retention
//	-m string    model store backend (file|s3|redis)
//	-o string    model directory for the file backend
//	-s string    JWT HMAC secret
//	-t duration  training timeout
//	-r float     password analyses per second
//	-n string    NATS URL
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], serverFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "HTTP address and port")
	fs.StringVar(&config.GRPCHealthAddr, "g", config.GRPCHealthAddr, "gRPC health address and port")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.LogStoreBackend, "b", config.LogStoreBackend, "log store backend")
	fs.StringVar(&config.LogStoreDSN, "d", config.LogStoreDSN, "log store DSN")
	fs.IntVar(&config.LoginLogRetention, "k", config.LoginLogRetention, "number of login records to keep")
	fs.StringVar(&config.ModelStoreBackend, "m", config.ModelStoreBackend, "model store backend")
	fs.StringVar(&config.ModelDir, "o", config.ModelDir, "model directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TrainTimeout, "t", config.TrainTimeout, "training timeout")
	fs.Float64Var(&config.PasswordRateLimit, "r", config.PasswordRateLimit, "password analyses per second")
	fs.StringVar(&config.NATSURL, "n", config.NATSURL, "NATS URL")
	brokers := fs.String("kafka-brokers", strings.Join(config.KafkaBrokers, ","), "comma-separated Kafka brokers")
	fs.StringVar(&config.KafkaTopic, "kafka-topic", config.KafkaTopic, "Kafka login topic")
	fs.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "Redis address")
	fs.StringVar(&config.S3Bucket, "s3-bucket", config.S3Bucket, "S3 bucket")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	config.KafkaBrokers = flagx.SplitList(*brokers)
	return nil
}
