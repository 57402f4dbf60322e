package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/flagx"
)

const envPrefix = "SECANALYTICS_"

// parseEnv overlays SECANALYTICS_* variables. Unset variables are skipped;
// set but unparsable numbers and durations are errors.
func parseEnv(config *Config) error {
	strs := map[string]*string{
		"HTTP_ADDR":           &config.HTTPAddr,
		"GRPC_HEALTH_ADDR":    &config.GRPCHealthAddr,
		"LOG_LEVEL":           &config.LogLevel,
		"LOG_STORE_BACKEND":   &config.LogStoreBackend,
		"LOG_STORE_DSN":       &config.LogStoreDSN,
		"MODEL_STORE_BACKEND": &config.ModelStoreBackend,
		"MODEL_DIR":           &config.ModelDir,
		"MODEL_KEY":           &config.ModelKey,
		"S3_REGION":           &config.S3Region,
		"S3_ENDPOINT":         &config.S3Endpoint,
		"S3_ACCESS_KEY":       &config.S3AccessKey,
		"S3_SECRET_KEY":       &config.S3SecretKey,
		"S3_BUCKET":           &config.S3Bucket,
		"S3_PREFIX":           &config.S3Prefix,
		"REDIS_ADDR":          &config.RedisAddr,
		"REDIS_PASSWORD":      &config.RedisPassword,
		"REDIS_PREFIX":        &config.RedisPrefix,
		"SECRET_KEY":          &config.SecretKey,
		"NATS_URL":            &config.NATSURL,
		"KAFKA_TOPIC":         &config.KafkaTopic,
		"KAFKA_GROUP":         &config.KafkaGroup,
	}
	for name, dst := range strs {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"LOGIN_LOG_RETENTION": &config.LoginLogRetention,
		"REDIS_DB":            &config.RedisDB,
		"PASSWORD_RATE_BURST": &config.PasswordRateBurst,
	}
	for name, dst := range ints {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = n
		}
	}

	durations := map[string]*time.Duration{
		"TRAIN_TIMEOUT":   &config.TrainTimeout,
		"REQUEST_TIMEOUT": &config.RequestTimeout,
	}
	for name, dst := range durations {
		if v, ok := os.LookupEnv(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", envPrefix, name, err)
			}
			*dst = d
		}
	}

	if v, ok := os.LookupEnv(envPrefix + "PASSWORD_RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%sPASSWORD_RATE_LIMIT: %w", envPrefix, err)
		}
		config.PasswordRateLimit = f
	}

	if v, ok := os.LookupEnv(envPrefix + "KAFKA_BROKERS"); ok {
		config.KafkaBrokers = flagx.SplitList(v)
	}

	return nil
}
