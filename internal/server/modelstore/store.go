// Package modelstore persists the trained outlier model as a single
// snapshot blob. Backends (local file, S3, Redis) only move bytes; the
// snapshot envelope is owned by Store.
package modelstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
)

// DefaultKey names the snapshot blob in every backend.
const DefaultKey = "anomaly_model.json"

var ErrCorrupt = errors.New("modelstore: corrupt snapshot")

// BlobStore is a flat key/value byte store. Get returns common.ErrorNotFound
// when key is absent.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// Snapshot is everything needed to restore a trained model. Scaler and
// Forest are opaque encoded blobs.
type Snapshot struct {
	Version   string          `json:"version"`
	TrainedAt time.Time       `json:"trainedAt"`
	Samples   int             `json:"samples"`
	Scaler    json.RawMessage `json:"scaler"`
	Forest    json.RawMessage `json:"forest"`
}

type Store struct {
	blobs BlobStore
	key   string
}

func New(blobs BlobStore, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{blobs: blobs, key: key}
}

// Save writes snap as one blob, so a reader never sees a scaler without its
// forest.
func (s *Store) Save(ctx context.Context, snap Snapshot) error {
	if err := snap.validate(); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.blobs.Put(ctx, s.key, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

// Load returns the stored snapshot, common.ErrorNotFound when there is none,
// or ErrCorrupt when the blob cannot be decoded.
func (s *Store) Load(ctx context.Context) (Snapshot, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := snap.validate(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (s Snapshot) validate() error {
	if s.Version == "" || len(s.Scaler) == 0 || len(s.Forest) == 0 {
		return fmt.Errorf("%w: version=%q scaler=%dB forest=%dB", ErrCorrupt, s.Version, len(s.Scaler), len(s.Forest))
	}
	return nil
}

// notFound wraps common.ErrorNotFound with the key for logs.
func notFound(key string) error {
	return fmt.Errorf("%w: %s", common.ErrorNotFound, key)
}
