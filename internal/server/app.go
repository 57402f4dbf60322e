// Package server wires the analytics service together: log store, model
// store, outlier model, services, and the HTTP, gRPC health and Kafka
// runners, with graceful shutdown on SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/password"
	"github.com/dmitrijs2005/secanalytics/internal/server/bus"
	"github.com/dmitrijs2005/secanalytics/internal/server/config"
	"github.com/dmitrijs2005/secanalytics/internal/server/ingest"
	"github.com/dmitrijs2005/secanalytics/internal/server/metrics"
	"github.com/dmitrijs2005/secanalytics/internal/server/modelstore"
	"github.com/dmitrijs2005/secanalytics/internal/server/outlier"
	"github.com/dmitrijs2005/secanalytics/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secanalytics/internal/server/rest"
	"github.com/dmitrijs2005/secanalytics/internal/server/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/secanalytics/internal/server/grpc"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	model     *outlier.Model
	metrics   *metrics.Metrics
	anomalies *services.AnomalyService
	passwords *services.PasswordService
	closers   []func()
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger}

	rm, err := repomanager.New(c.LogStoreBackend)
	if err != nil {
		return nil, err
	}
	app.db, err = repomanager.Open(ctx, rm, c.LogStoreDSN)
	if err != nil {
		return nil, fmt.Errorf("log store init error: %w", err)
	}
	app.closers = append(app.closers, func() { _ = app.db.Close() })

	blobs, closeBlobs, err := newBlobStore(ctx, c)
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("model store init error: %w", err)
	}
	if closeBlobs != nil {
		app.closers = append(app.closers, closeBlobs)
	}

	app.model = outlier.New(modelstore.New(blobs, c.ModelKey), logger)
	app.metrics = metrics.New()

	opts := []services.AnomalyOption{services.WithMetrics(app.metrics)}
	if c.NATSURL != "" {
		p, err := bus.Connect(c.NATSURL, "secanalytics")
		if err != nil {
			app.Close()
			return nil, err
		}
		app.closers = append(app.closers, p.Close)
		opts = append(opts, services.WithPublisher(p))
	}

	app.anomalies = services.NewAnomalyService(app.db, rm, app.model, c, logger, opts...)
	app.passwords = services.NewPasswordService(password.NewAnalyzer(), logger, app.metrics)

	return app, nil
}

func newBlobStore(ctx context.Context, c *config.Config) (modelstore.BlobStore, func(), error) {
	switch c.ModelStoreBackend {
	case config.ModelStoreFile, "":
		fs, err := modelstore.NewFileBlobStore(c.ModelDir)
		return fs, nil, err
	case config.ModelStoreS3:
		client, err := modelstore.NewS3Client(ctx, modelstore.S3Config{
			Region:    c.S3Region,
			Endpoint:  c.S3Endpoint,
			AccessKey: c.S3AccessKey,
			SecretKey: c.S3SecretKey,
			Bucket:    c.S3Bucket,
			Prefix:    c.S3Prefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return modelstore.NewS3BlobStore(client, c.S3Bucket, c.S3Prefix), nil, nil
	case config.ModelStoreRedis:
		rc := redis.NewClient(&redis.Options{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
		})
		return modelstore.NewRedisBlobStore(rc, c.RedisPrefix), func() { _ = rc.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown model store backend %q", c.ModelStoreBackend)
	}
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run restores the persisted model, then serves until ctx is cancelled, a
// signal arrives or one of the runners fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.Close()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.model.Restore(ctx)
	app.metrics.ModelTrained(app.model.IsTrained())

	g, ctx := errgroup.WithContext(ctx)

	httpServer := rest.NewServer(app.config, app.logger, app.anomalies, app.passwords, app.metrics)
	g.Go(func() error { return httpServer.Run(ctx) })

	healthServer := gs.NewHealthServer(app.config.GRPCHealthAddr, app.logger, app.model)
	g.Go(func() error { return healthServer.Run(ctx) })

	if len(app.config.KafkaBrokers) > 0 {
		client, err := ingest.NewClient(app.config.KafkaBrokers, app.config.KafkaTopic, app.config.KafkaGroup)
		if err != nil {
			cancelFunc()
			_ = g.Wait()
			return err
		}
		consumer := ingest.NewConsumer(client, app.anomalies, app.logger)
		g.Go(func() error { return consumer.Run(ctx) })
	}

	err := g.Wait()
	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return err
}

// Close releases the log store, the model store client and the NATS
// connection. It is safe to call more than once.
func (app *App) Close() {
	for i := len(app.closers) - 1; i >= 0; i-- {
		app.closers[i]()
	}
	app.closers = nil
}
