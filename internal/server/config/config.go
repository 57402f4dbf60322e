// Package config assembles server settings from defaults, an optional JSON
// file, SECANALYTICS_* environment variables and command-line flags, in that
// order of precedence (flags win).
package config

import (
	"fmt"
	"time"
)

// Log store backends.
const (
	LogStoreSQLite   = "sqlite"
	LogStorePostgres = "postgres"
)

// Model store backends.
const (
	ModelStoreFile  = "file"
	ModelStoreS3    = "s3"
	ModelStoreRedis = "redis"
)

// Config holds runtime settings for the analytics server.
//
// NATSURL and KafkaBrokers are optional; when empty the corresponding
// integration is not started.
type Config struct {
	HTTPAddr       string
	GRPCHealthAddr string
	LogLevel       string

	LogStoreBackend   string
	LogStoreDSN       string
	LoginLogRetention int

	ModelStoreBackend string
	ModelDir          string
	ModelKey          string

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	SecretKey      string
	TrainTimeout   time.Duration
	RequestTimeout time.Duration

	PasswordRateLimit float64
	PasswordRateBurst int

	NATSURL      string
	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroup   string
}

// LoadDefaults populates Config with development defaults.
// The secret key must be overridden outside of local runs.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5001"
	c.GRPCHealthAddr = ":50051"
	c.LogLevel = "info"

	c.LogStoreBackend = LogStoreSQLite
	c.LogStoreDSN = "secanalytics.db"
	c.LoginLogRetention = 10000

	c.ModelStoreBackend = ModelStoreFile
	c.ModelDir = "models"
	c.ModelKey = "anomaly_model.json"

	c.S3Region = "us-east-1"
	c.S3Endpoint = "http://127.0.0.1:9000/"
	c.S3Bucket = "secanalytics"
	c.S3Prefix = "models/"

	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "secanalytics:"

	c.SecretKey = "secretKey"
	c.TrainTimeout = 2 * time.Minute
	c.RequestTimeout = 30 * time.Second

	c.PasswordRateLimit = 10
	c.PasswordRateBurst = 20

	c.KafkaBrokers = []string{}
	c.KafkaTopic = "secanalytics.logins"
	c.KafkaGroup = "secanalytics"
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.LogStoreBackend {
	case LogStoreSQLite, LogStorePostgres:
	default:
		return fmt.Errorf("unknown log store backend %q", c.LogStoreBackend)
	}
	switch c.ModelStoreBackend {
	case ModelStoreFile, ModelStoreS3, ModelStoreRedis:
	default:
		return fmt.Errorf("unknown model store backend %q", c.ModelStoreBackend)
	}
	if c.LoginLogRetention <= 0 {
		return fmt.Errorf("login log retention must be positive, got %d", c.LoginLogRetention)
	}
	if c.PasswordRateLimit <= 0 || c.PasswordRateBurst <= 0 {
		return fmt.Errorf("password rate limit and burst must be positive")
	}
	if c.SecretKey == "" {
		return fmt.Errorf("secret key is empty")
	}
	return nil
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
