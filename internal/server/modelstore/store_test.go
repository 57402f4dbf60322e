package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBlobs struct {
	mu     sync.Mutex
	data   map[string][]byte
	putErr error
}

func newMemBlobs() *memBlobs {
	return &memBlobs{data: map[string][]byte{}}
}

func (m *memBlobs) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putErr != nil {
		return m.putErr
	}
	m.data[key] = append([]byte(nil), data...)
	return nil
}

func (m *memBlobs) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, notFound(key)
	}
	return d, nil
}

func sampleSnapshot() Snapshot {
	return Snapshot{
		Version:   "c1f0b8de-3c57-4d0f-9b83-1a2b3c4d5e6f",
		TrainedAt: time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
		Samples:   120,
		Scaler:    json.RawMessage(`{"mean":[1],"scale":[2]}`),
		Forest:    json.RawMessage(`{"width":1}`),
	}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	blobs := newMemBlobs()
	s := New(blobs, "")

	require.NoError(t, s.Save(ctx, sampleSnapshot()))
	assert.Contains(t, blobs.data, DefaultKey)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleSnapshot().Version, got.Version)
	assert.True(t, sampleSnapshot().TrainedAt.Equal(got.TrainedAt))
	assert.Equal(t, 120, got.Samples)
	assert.JSONEq(t, `{"mean":[1],"scale":[2]}`, string(got.Scaler))
	assert.JSONEq(t, `{"width":1}`, string(got.Forest))
}

func TestStore_LoadMissing(t *testing.T) {
	_, err := New(newMemBlobs(), "model").Load(context.Background())
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestStore_LoadCorrupt(t *testing.T) {
	ctx := context.Background()
	for name, blob := range map[string]string{
		"not json":       `{"version":`,
		"missing forest": `{"version":"v1","scaler":{"mean":[1],"scale":[1]}}`,
		"missing scaler": `{"version":"v1","forest":{"width":1}}`,
		"no version":     `{"scaler":{},"forest":{}}`,
	} {
		t.Run(name, func(t *testing.T) {
			blobs := newMemBlobs()
			blobs.data[DefaultKey] = []byte(blob)

			_, err := New(blobs, "").Load(ctx)
			require.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestStore_SaveRejectsPartialSnapshot(t *testing.T) {
	blobs := newMemBlobs()
	snap := sampleSnapshot()
	snap.Forest = nil

	err := New(blobs, "").Save(context.Background(), snap)
	require.ErrorIs(t, err, ErrCorrupt)
	assert.Empty(t, blobs.data)
}

func TestStore_SavePropagatesBackendError(t *testing.T) {
	blobs := newMemBlobs()
	blobs.putErr = errors.New("disk full")

	err := New(blobs, "").Save(context.Background(), sampleSnapshot())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
