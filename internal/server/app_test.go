package server

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/config"
	"github.com/dmitrijs2005/secanalytics/internal/server/modelstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.LoadDefaults()
	dir := t.TempDir()
	c.HTTPAddr = "127.0.0.1:0"
	c.GRPCHealthAddr = "127.0.0.1:0"
	c.LogStoreDSN = filepath.Join(dir, "logs.db")
	c.ModelDir = filepath.Join(dir, "models")
	return c
}

func TestNewBlobStore(t *testing.T) {
	ctx := context.Background()

	c := testConfig(t)
	bs, closer, err := newBlobStore(ctx, c)
	require.NoError(t, err)
	assert.Nil(t, closer)
	assert.IsType(t, &modelstore.FileBlobStore{}, bs)

	c.ModelStoreBackend = config.ModelStoreRedis
	bs, closer, err = newBlobStore(ctx, c)
	require.NoError(t, err)
	require.NotNil(t, closer)
	closer()
	assert.IsType(t, &modelstore.RedisBlobStore{}, bs)

	c.ModelStoreBackend = config.ModelStoreS3
	c.S3AccessKey, c.S3SecretKey = "key", "secret"
	bs, _, err = newBlobStore(ctx, c)
	require.NoError(t, err)
	assert.IsType(t, &modelstore.S3BlobStore{}, bs)

	c.ModelStoreBackend = "tape"
	_, _, err = newBlobStore(ctx, c)
	require.Error(t, err)
}

func TestNewApp_Errors(t *testing.T) {
	ctx := context.Background()

	c := testConfig(t)
	c.LogStoreBackend = "oracle"
	_, err := NewApp(ctx, c, logging.Discard())
	require.Error(t, err)

	c = testConfig(t)
	c.ModelStoreBackend = "tape"
	_, err = NewApp(ctx, c, logging.Discard())
	require.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	c := testConfig(t)
	app, err := NewApp(context.Background(), c, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(150 * time.Millisecond)
	assert.False(t, app.model.IsTrained())
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop after cancel")
	}

	// Close after Run is a no-op.
	app.Close()
}

func TestApp_RunFailsOnBadAddress(t *testing.T) {
	c := testConfig(t)
	c.HTTPAddr = "127.0.0.1:99999"
	app, err := NewApp(context.Background(), c, logging.Discard())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- app.Run(context.Background()) }()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not fail on a bad address")
	}
}
