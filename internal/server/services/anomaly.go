package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/dbx"
	"github.com/dmitrijs2005/secanalytics/internal/features"
	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/config"
	"github.com/dmitrijs2005/secanalytics/internal/server/metrics"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/dmitrijs2005/secanalytics/internal/server/outlier"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secanalytics/internal/timex"
	"golang.org/x/sync/singleflight"
)

// Texts of detection and training responses.
const (
	RecommendationVerify  = "Verify identity with 2FA"
	RecommendationNormal  = "Normal login pattern"
	RecommendationCollect = "Collect more login data"
	MessageUntrained      = "Model not trained yet. Please train with historical data first."
	MessageTrained        = "Anomaly detection model trained successfully"
)

// DefaultRetention is how many login records RecordLogin keeps.
const DefaultRetention = 10000

// Publisher receives domain events. *bus.Publisher and bus.Nop implement it.
type Publisher interface {
	AnomalyDetected(ctx context.Context, ev models.LoginEvent, res models.AnomalyResult) error
	ModelTrained(ctx context.Context, m models.TrainingMetrics) error
}

// Recorder is the metrics sink used by the services. *metrics.Metrics
// implements it.
type Recorder interface {
	Detection(verdict string, score float64)
	Training(d time.Duration, err error)
	ModelTrained(trained bool)
	PasswordAnalysis(strength string)
	LoginRecorded()
}

type nopRecorder struct{}

func (nopRecorder) Detection(string, float64)     {}
func (nopRecorder) Training(time.Duration, error) {}
func (nopRecorder) ModelTrained(bool)             {}
func (nopRecorder) PasswordAnalysis(string)       {}
func (nopRecorder) LoginRecorded()                {}

type nopPublisher struct{}

func (nopPublisher) AnomalyDetected(context.Context, models.LoginEvent, models.AnomalyResult) error {
	return nil
}

func (nopPublisher) ModelTrained(context.Context, models.TrainingMetrics) error {
	return nil
}

// AnomalyService answers detection, training and stats requests and records
// successful logins into the log store.
type AnomalyService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	model        *outlier.Model
	logger       logging.Logger
	publisher    Publisher
	metrics      Recorder
	retention    int
	trainTimeout time.Duration

	trains singleflight.Group
	now    func() time.Time
}

type AnomalyOption func(*AnomalyService)

func WithPublisher(p Publisher) AnomalyOption {
	return func(s *AnomalyService) { s.publisher = p }
}

func WithMetrics(r Recorder) AnomalyOption {
	return func(s *AnomalyService) { s.metrics = r }
}

func NewAnomalyService(db *sql.DB, m repomanager.RepositoryManager, model *outlier.Model, cfg *config.Config, logger logging.Logger, opts ...AnomalyOption) *AnomalyService {
	s := &AnomalyService{
		db:           db,
		repomanager:  m,
		model:        model,
		logger:       logger.With("module", "anomaly"),
		publisher:    nopPublisher{},
		metrics:      nopRecorder{},
		retention:    DefaultRetention,
		trainTimeout: cfg.TrainTimeout,
		now:          time.Now,
	}
	if cfg.LoginLogRetention > 0 {
		s.retention = cfg.LoginLogRetention
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Detect scores ev against the current model. An untrained model is not an
// error: the result is a normal verdict carrying MessageUntrained.
func (s *AnomalyService) Detect(ctx context.Context, ev models.LoginEvent) (models.AnomalyResult, error) {
	if !s.model.IsTrained() {
		s.metrics.Detection(metrics.VerdictUntrained, 0)
		return models.AnomalyResult{
			IsAnomaly:      false,
			AnomalyScore:   0,
			Message:        MessageUntrained,
			Recommendation: RecommendationCollect,
		}, nil
	}

	if err := ev.Validate(); err != nil {
		return models.AnomalyResult{}, err
	}

	v, err := features.Extract(ev)
	if err != nil {
		return models.AnomalyResult{}, err
	}

	verdict, score := s.model.Evaluate(v)
	res := models.AnomalyResult{
		IsAnomaly:      verdict == outlier.Anomalous,
		AnomalyScore:   score,
		Factors:        features.Explain(v, ev),
		Recommendation: RecommendationNormal,
	}

	if !res.IsAnomaly {
		s.metrics.Detection(metrics.VerdictNormal, score)
		return res, nil
	}

	res.Recommendation = RecommendationVerify
	s.metrics.Detection(metrics.VerdictAnomalous, score)
	s.logger.Warn(ctx, "anomalous login", "userId", ev.UserID, "score", score, "factors", strings.Join(res.Factors, "; "))

	if err := s.publisher.AnomalyDetected(ctx, ev, res); err != nil {
		s.logger.Error(ctx, "anomaly event not published", "error", err)
	}
	return res, nil
}

// Train retrains the model on the whole log store. Concurrent calls share
// one run; the run is bounded by the configured train timeout rather than by
// any single caller's context.
func (s *AnomalyService) Train(ctx context.Context) (*models.TrainingMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ch := s.trains.DoChan("train", func() (any, error) {
		return s.train(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*models.TrainingMetrics), nil
	}
}

func (s *AnomalyService) train(ctx context.Context) (*models.TrainingMetrics, error) {
	if s.trainTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.trainTimeout)
		defer cancel()
	}

	started := s.now()

	logs, err := s.repomanager.LoginLogs(s.db).LoadAll(ctx)
	if err != nil {
		err = fmt.Errorf("load login logs: %w", err)
		s.metrics.Training(s.now().Sub(started), err)
		return nil, err
	}

	m, err := s.model.Train(ctx, logs)
	s.metrics.Training(s.now().Sub(started), err)
	if err != nil {
		if !errors.Is(err, common.ErrDataNotFound) && !errors.Is(err, common.ErrInsufficientData) {
			s.logger.Error(ctx, "training failed", "error", err)
		}
		return nil, err
	}
	s.metrics.ModelTrained(true)

	if err := s.publisher.ModelTrained(ctx, *m); err != nil {
		s.logger.Error(ctx, "training event not published", "error", err)
	}
	return m, nil
}

// Stats reports model readiness and the size of the training log.
func (s *AnomalyService) Stats(ctx context.Context) (models.Stats, error) {
	n, err := s.repomanager.LoginLogs(s.db).Count(ctx)
	if err != nil {
		return models.Stats{}, fmt.Errorf("count login logs: %w", err)
	}
	return models.Stats{
		ModelTrained:          s.model.IsTrained(),
		TrainingDataSize:      n,
		PasswordAnalyzerReady: true,
		ModelVersion:          s.model.Version(),
		Version:               common.ServiceVersion,
	}, nil
}

// RecordLogin appends a successful login to the log store and trims the
// store to the newest retention records. History on ev is not stored.
func (s *AnomalyService) RecordLogin(ctx context.Context, ev models.LoginEvent) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	ts, err := timex.ParseInstant(ev.Timestamp)
	if err != nil {
		return fmt.Errorf("%w: timestamp: %v", common.ErrValidation, err)
	}

	rec := models.LoginEvent{
		UserID:    ev.UserID,
		Timestamp: ts.Format(time.RFC3339Nano),
		IPAddress: ev.IPAddress,
		UserAgent: ev.UserAgent,
		Endpoint:  ev.Endpoint,
	}

	var trimmed int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.LoginLogs(tx)
		if err := repo.Append(ctx, rec); err != nil {
			return err
		}
		trimmed, err = repo.Trim(ctx, s.retention)
		return err
	})
	if err != nil {
		return fmt.Errorf("record login: %w", err)
	}

	s.metrics.LoginRecorded()
	if trimmed > 0 {
		s.logger.Debug(ctx, "login log trimmed", "removed", trimmed, "keep", s.retention)
	}
	return nil
}
