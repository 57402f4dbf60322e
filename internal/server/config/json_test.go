package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":           "www.example:9000",
		"log_store_backend":   "postgres",
		"log_store_dsn":       "postgres://logs",
		"login_log_retention": 250,
		"model_store_backend": "redis",
		"redis_addr":          "cache:6379",
		"redis_db":            2,
		"train_timeout":       "45s",
		"request_timeout":     int64(5 * time.Second),
		"kafka_brokers":       []string{"k1:9092"},
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
		assert.Equal(t, "postgres", cfg.LogStoreBackend)
		assert.Equal(t, "postgres://logs", cfg.LogStoreDSN)
		assert.Equal(t, 250, cfg.LoginLogRetention)
		assert.Equal(t, "redis", cfg.ModelStoreBackend)
		assert.Equal(t, "cache:6379", cfg.RedisAddr)
		assert.Equal(t, 2, cfg.RedisDB)
		assert.Equal(t, 45*time.Second, cfg.TrainTimeout)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, []string{"k1:9092"}, cfg.KafkaBrokers)
	})

	t.Run("absent fields keep defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, ":50051", cfg.GRPCHealthAddr)
		assert.Equal(t, "secretKey", cfg.SecretKey)
		assert.Equal(t, "models", cfg.ModelDir)
	})

	t.Run("no config and no flags leaves config unchanged", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("SECANALYTICS_CONFIG", "")

		cfg := &Config{HTTPAddr: "defaults:1234", SecretKey: "key"}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, "key", cfg.SecretKey)
	})

	t.Run("path from environment", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv("SECANALYTICS_CONFIG", pathFlag)

		cfg := &Config{}
		require.NoError(t, parseJson(cfg))
		assert.Equal(t, "www.example:9000", cfg.HTTPAddr)
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		require.Error(t, parseJson(&Config{}))
	})

	t.Run("missing file", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}

		require.Error(t, parseJson(&Config{}))
	})
}
