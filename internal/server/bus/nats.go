// Package bus publishes domain events (anomalies, model retrains) to NATS.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/nats-io/nats.go"
)

// Subjects.
const (
	SubjectAnomalyDetected = "secanalytics.anomaly.detected"
	SubjectModelTrained    = "secanalytics.model.trained"
)

// Conn is the part of *nats.Conn used for publishing.
type Conn interface {
	Publish(subject string, data []byte) error
}

type AnomalyEvent struct {
	UserID    string    `json:"userId,omitempty"`
	Timestamp string    `json:"timestamp"`
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	Score     float64   `json:"anomalyScore"`
	Factors   []string  `json:"factors"`
	Detected  time.Time `json:"detectedAt"`
}

type Publisher struct {
	conn  Conn
	close func()
	now   func() time.Time
}

func NewPublisher(conn Conn) *Publisher {
	return &Publisher{conn: conn, now: time.Now}
}

// Connect dials url and returns a Publisher owning the connection.
func Connect(url, name string) (*Publisher, error) {
	nc, err := nats.Connect(url, nats.Name(name))
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	p := NewPublisher(nc)
	p.close = func() {
		_ = nc.Drain()
		nc.Close()
	}
	return p, nil
}

func (p *Publisher) Close() {
	if p.close != nil {
		p.close()
	}
}

func (p *Publisher) AnomalyDetected(_ context.Context, ev models.LoginEvent, res models.AnomalyResult) error {
	return p.publish(SubjectAnomalyDetected, AnomalyEvent{
		UserID:    ev.UserID,
		Timestamp: ev.Timestamp,
		IPAddress: ev.IPAddress,
		UserAgent: ev.UserAgent,
		Score:     res.AnomalyScore,
		Factors:   res.Factors,
		Detected:  p.now().UTC(),
	})
}

func (p *Publisher) ModelTrained(_ context.Context, m models.TrainingMetrics) error {
	return p.publish(SubjectModelTrained, m)
}

func (p *Publisher) publish(subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Nop drops every event. Used when no NATS URL is configured.
type Nop struct{}

func (Nop) AnomalyDetected(context.Context, models.LoginEvent, models.AnomalyResult) error {
	return nil
}

func (Nop) ModelTrained(context.Context, models.TrainingMetrics) error {
	return nil
}
