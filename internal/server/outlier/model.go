// Package outlier owns the trained login outlier model: training from login
// history, persistence through a model store, and lock-free scoring.
//
// The model is either Untrained or Trained. A trained model is an immutable
// snapshot (scaler + forest) published through an atomic pointer, so scoring
// never blocks on a retrain and never sees a half-built model.
package outlier

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/features"
	"github.com/dmitrijs2005/secanalytics/internal/iforest"
	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/dmitrijs2005/secanalytics/internal/server/modelstore"
	"github.com/dmitrijs2005/secanalytics/internal/timex"
	"github.com/google/uuid"
)

// MinTrainingSamples is the smallest log that Train accepts.
const MinTrainingSamples = 50

// DefaultContamination is the expected share of outliers in training data.
const DefaultContamination = iforest.DefaultContamination

// Verdicts returned by Predict.
const (
	Anomalous = -1
	Normal    = 1
)

// Store persists snapshots. *modelstore.Store implements it.
type Store interface {
	Save(ctx context.Context, snap modelstore.Snapshot) error
	Load(ctx context.Context) (modelstore.Snapshot, error)
}

type snapshot struct {
	version   string
	trainedAt time.Time
	samples   int
	scaler    *iforest.Scaler
	forest    *iforest.Forest
}

type Model struct {
	current atomic.Pointer[snapshot]

	store  Store
	logger logging.Logger
	opts   iforest.Options

	newVersion func() string
	now        func() time.Time
}

type Option func(*Model)

// WithForestOptions overrides the isolation forest parameters.
func WithForestOptions(o iforest.Options) Option {
	return func(m *Model) { m.opts = o }
}

// New returns an Untrained model. Call Restore to pick up a persisted one.
func New(store Store, logger logging.Logger, opts ...Option) *Model {
	m := &Model{
		store:      store,
		logger:     logger.With("module", "outlier"),
		opts:       iforest.DefaultOptions(),
		newVersion: uuid.NewString,
		now:        time.Now,
	}
	m.opts.Contamination = DefaultContamination
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Model) IsTrained() bool {
	return m.current.Load() != nil
}

// Version is the id of the current snapshot, empty when Untrained.
func (m *Model) Version() string {
	if s := m.current.Load(); s != nil {
		return s.version
	}
	return ""
}

// Restore loads the persisted snapshot. Missing or unreadable state leaves
// the model Untrained; it is logged and never returned as an error.
func (m *Model) Restore(ctx context.Context) {
	stored, err := m.store.Load(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		m.logger.Info(ctx, "no persisted model, starting untrained")
		return
	}
	if err != nil {
		m.logger.Warn(ctx, "could not load persisted model, starting untrained", "error", err)
		return
	}

	s, err := decode(stored)
	if err != nil {
		m.logger.Warn(ctx, "persisted model is unusable, starting untrained", "error", err)
		return
	}

	m.current.Store(s)
	m.logger.Info(ctx, "model restored", "version", s.version, "samples", s.samples, "trainedAt", s.trainedAt)
}

// Train fits a new model on logs (chronological, oldest first). Row i uses
// logs[:i] as its login history. The new model is persisted before it
// replaces the current one; if saving fails the previous model stays.
func (m *Model) Train(ctx context.Context, logs []models.LoginEvent) (*models.TrainingMetrics, error) {
	if len(logs) == 0 {
		return nil, common.ErrDataNotFound
	}
	if len(logs) < MinTrainingSamples {
		return nil, &common.InsufficientDataError{Count: len(logs), Required: MinTrainingSamples}
	}

	rows, err := trainingRows(logs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started := m.now()

	scaler, err := iforest.FitScaler(rows)
	if err != nil {
		return nil, fmt.Errorf("fit scaler: %w", err)
	}
	scaled := scaler.TransformAll(rows)

	forest, err := iforest.Fit(scaled, m.opts)
	if err != nil {
		return nil, fmt.Errorf("fit forest: %w", err)
	}

	anomalies := 0
	for _, r := range scaled {
		if forest.Predict(r) == Anomalous {
			anomalies++
		}
	}

	s := &snapshot{
		version:   m.newVersion(),
		trainedAt: m.now().UTC(),
		samples:   len(rows),
		scaler:    scaler,
		forest:    forest,
	}

	stored, err := encode(s)
	if err != nil {
		return nil, err
	}
	if err := m.store.Save(ctx, stored); err != nil {
		m.logger.Error(ctx, "model not persisted, keeping previous model", "error", err)
		return nil, fmt.Errorf("persist model: %w", err)
	}

	m.current.Store(s)

	m.logger.Info(ctx, "model trained",
		"version", s.version,
		"samples", s.samples,
		"anomalies", anomalies,
		"elapsed", m.now().Sub(started),
	)

	return &models.TrainingMetrics{
		TotalSamples:      len(rows),
		AnomaliesDetected: anomalies,
		AnomalyRate:       float64(anomalies) / float64(len(rows)),
		ModelVersion:      s.version,
		TrainedAt:         s.trainedAt,
	}, nil
}

// Evaluate returns the verdict and the 0..100 score of v against one
// snapshot. An Untrained model answers (Normal, 0).
func (m *Model) Evaluate(v features.Vector) (verdict int, score float64) {
	s := m.current.Load()
	if s == nil {
		return Normal, 0
	}
	x := s.scaler.Transform(v.Slice())
	return s.forest.Predict(x), Calibrate(s.forest.Score(x))
}

// Predict returns Anomalous (-1) or Normal (+1).
func (m *Model) Predict(v features.Vector) int {
	verdict, _ := m.Evaluate(v)
	return verdict
}

// Score returns the 0..100 anomaly score; higher is more anomalous.
func (m *Model) Score(v features.Vector) float64 {
	_, score := m.Evaluate(v)
	return score
}

// Calibrate maps a raw forest score onto 0..100 as (1-(raw+0.5))*100,
// clamped. The affine remap is tuned to the usual isolation forest score
// range; it is a display heuristic, not a probability.
func Calibrate(raw float64) float64 {
	return math.Max(0, math.Min(100, (1-(raw+0.5))*100))
}

func trainingRows(logs []models.LoginEvent) ([][]float64, error) {
	instants := make([]time.Time, len(logs))
	for i, l := range logs {
		ts, err := timex.ParseInstant(l.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: login record %d: %v", common.ErrValidation, i, err)
		}
		instants[i] = ts
	}

	rows := make([][]float64, len(logs))
	for i, l := range logs {
		rows[i] = features.Build(instants[i], l.IPAddress, l.UserAgent, instants[:i]).Slice()
	}
	return rows, nil
}

func encode(s *snapshot) (modelstore.Snapshot, error) {
	scaler, err := iforest.MarshalScaler(s.scaler)
	if err != nil {
		return modelstore.Snapshot{}, fmt.Errorf("encode scaler: %w", err)
	}
	forest, err := iforest.Marshal(s.forest)
	if err != nil {
		return modelstore.Snapshot{}, fmt.Errorf("encode forest: %w", err)
	}
	return modelstore.Snapshot{
		Version:   s.version,
		TrainedAt: s.trainedAt,
		Samples:   s.samples,
		Scaler:    scaler,
		Forest:    forest,
	}, nil
}

func decode(stored modelstore.Snapshot) (*snapshot, error) {
	scaler, err := iforest.UnmarshalScaler(stored.Scaler)
	if err != nil {
		return nil, err
	}
	forest, err := iforest.Unmarshal(stored.Forest)
	if err != nil {
		return nil, err
	}
	if scaler.Width() != features.Size || forest.Width != features.Size {
		return nil, fmt.Errorf("%w: model width %d/%d, want %d", iforest.ErrCorrupt, scaler.Width(), forest.Width, features.Size)
	}
	return &snapshot{
		version:   stored.Version,
		trainedAt: stored.TrainedAt,
		samples:   stored.Samples,
		scaler:    scaler,
		forest:    forest,
	}, nil
}
