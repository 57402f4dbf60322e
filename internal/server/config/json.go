package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/secanalytics/internal/flagx"
	"github.com/dmitrijs2005/secanalytics/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// either "90s" style strings or integer nanoseconds. Absent or zero fields
// leave the current value untouched.
type JsonConfig struct {
	HTTPAddr          string         `json:"http_addr"`
	GRPCHealthAddr    string         `json:"grpc_health_addr"`
	LogLevel          string         `json:"log_level"`
	LogStoreBackend   string         `json:"log_store_backend"`
	LogStoreDSN       string         `json:"log_store_dsn"`
	LoginLogRetention int            `json:"login_log_retention"`
	ModelStoreBackend string         `json:"model_store_backend"`
	ModelDir          string         `json:"model_dir"`
	ModelKey          string         `json:"model_key"`
	S3Region          string         `json:"s3_region"`
	S3Endpoint        string         `json:"s3_endpoint"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Prefix          string         `json:"s3_prefix"`
	RedisAddr         string         `json:"redis_addr"`
	RedisPassword     string         `json:"redis_password"`
	RedisDB           int            `json:"redis_db"`
	RedisPrefix       string         `json:"redis_prefix"`
	SecretKey         string         `json:"secret_key"`
	TrainTimeout      timex.Duration `json:"train_timeout"`
	RequestTimeout    timex.Duration `json:"request_timeout"`
	PasswordRateLimit float64        `json:"password_rate_limit"`
	PasswordRateBurst int            `json:"password_rate_burst"`
	NATSURL           string         `json:"nats_url"`
	KafkaBrokers      []string       `json:"kafka_brokers"`
	KafkaTopic        string         `json:"kafka_topic"`
	KafkaGroup        string         `json:"kafka_group"`
}

// parseJson overlays values from the file named by -c/-config or
// $SECANALYTICS_CONFIG. No file means no change.
func parseJson(config *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogStoreBackend, c.LogStoreBackend)
	setString(&config.LogStoreDSN, c.LogStoreDSN)
	setInt(&config.LoginLogRetention, c.LoginLogRetention)
	setString(&config.ModelStoreBackend, c.ModelStoreBackend)
	setString(&config.ModelDir, c.ModelDir)
	setString(&config.ModelKey, c.ModelKey)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3Endpoint, c.S3Endpoint)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Prefix, c.S3Prefix)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.RedisPassword, c.RedisPassword)
	setInt(&config.RedisDB, c.RedisDB)
	setString(&config.RedisPrefix, c.RedisPrefix)
	setString(&config.SecretKey, c.SecretKey)
	if c.TrainTimeout.Duration > 0 {
		config.TrainTimeout = c.TrainTimeout.Duration
	}
	if c.RequestTimeout.Duration > 0 {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.PasswordRateLimit > 0 {
		config.PasswordRateLimit = c.PasswordRateLimit
	}
	setInt(&config.PasswordRateBurst, c.PasswordRateBurst)
	setString(&config.NATSURL, c.NATSURL)
	if c.KafkaBrokers != nil {
		config.KafkaBrokers = c.KafkaBrokers
	}
	setString(&config.KafkaTopic, c.KafkaTopic)
	setString(&config.KafkaGroup, c.KafkaGroup)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
