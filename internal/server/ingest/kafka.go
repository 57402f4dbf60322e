// Package ingest consumes successful-login events from Kafka and appends them
// to the login log, as an alternative to POST /login-logs.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/twmb/franz-go/pkg/kgo"
)

type Recorder interface {
	RecordLogin(ctx context.Context, ev models.LoginEvent) error
}

// Fetcher is the part of *kgo.Client the consumer needs.
type Fetcher interface {
	PollFetches(ctx context.Context) kgo.Fetches
	Close()
}

func NewClient(brokers []string, topic, group string) (*kgo.Client, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ConsumeTopics(topic),
		kgo.ConsumerGroup(group),
		kgo.ClientID("secanalytics"),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return cl, nil
}

type Consumer struct {
	client   Fetcher
	recorder Recorder
	logger   logging.Logger
}

func NewConsumer(client Fetcher, r Recorder, l logging.Logger) *Consumer {
	return &Consumer{client: client, recorder: r, logger: l.With("module", "kafka_ingest")}
}

// Run polls until ctx is done or the client is closed. Bad records are
// logged and skipped; they never stop the loop.
func (c *Consumer) Run(ctx context.Context) error {
	defer c.client.Close()

	c.logger.Info(ctx, "Listening for login events...")

	for {
		fetches := c.client.PollFetches(ctx)
		if ctx.Err() != nil || fetches.IsClientClosed() {
			c.logger.Info(ctx, "Stopping Kafka consumer...")
			return nil
		}

		fetches.EachError(func(topic string, partition int32, err error) {
			c.logger.Error(ctx, "fetch error", "topic", topic, "partition", partition, "error", err)
		})

		fetches.EachRecord(func(rec *kgo.Record) {
			if err := c.handle(ctx, rec); err != nil {
				c.logger.Warn(ctx, "login event skipped",
					"topic", rec.Topic, "partition", rec.Partition, "offset", rec.Offset, "error", err)
			}
		})
	}
}

func (c *Consumer) handle(ctx context.Context, rec *kgo.Record) error {
	var ev models.LoginEvent
	if err := json.Unmarshal(rec.Value, &ev); err != nil {
		return fmt.Errorf("%w: decode: %v", common.ErrValidation, err)
	}

	err := c.recorder.RecordLogin(ctx, ev)
	if err != nil && !errors.Is(err, common.ErrValidation) {
		return fmt.Errorf("record: %w", err)
	}
	return err
}
