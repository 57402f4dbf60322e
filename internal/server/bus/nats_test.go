package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type msg struct {
	subject string
	data    []byte
}

type fakeConn struct {
	sent []msg
	err  error
}

func (f *fakeConn) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg{subject, data})
	return nil
}

func TestAnomalyDetected(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn)
	p.now = func() time.Time { return time.Date(2025, 1, 15, 3, 0, 1, 0, time.UTC) }

	err := p.AnomalyDetected(context.Background(),
		models.LoginEvent{UserID: "alice", Timestamp: "2025-01-15T03:00:00Z", IPAddress: "203.0.113.9", UserAgent: "curl"},
		models.AnomalyResult{IsAnomaly: true, AnomalyScore: 97.5, Factors: []string{"Unusual login time (late night/early morning)"}},
	)
	require.NoError(t, err)
	require.Len(t, conn.sent, 1)
	assert.Equal(t, SubjectAnomalyDetected, conn.sent[0].subject)

	var got AnomalyEvent
	require.NoError(t, json.Unmarshal(conn.sent[0].data, &got))
	assert.Equal(t, "alice", got.UserID)
	assert.Equal(t, 97.5, got.Score)
	assert.Equal(t, []string{"Unusual login time (late night/early morning)"}, got.Factors)
	assert.True(t, got.Detected.Equal(p.now()))
}

func TestModelTrained(t *testing.T) {
	conn := &fakeConn{}
	p := NewPublisher(conn)

	err := p.ModelTrained(context.Background(), models.TrainingMetrics{TotalSamples: 120, AnomaliesDetected: 12, AnomalyRate: 0.1, ModelVersion: "v1"})
	require.NoError(t, err)
	require.Len(t, conn.sent, 1)
	assert.Equal(t, SubjectModelTrained, conn.sent[0].subject)
	assert.Contains(t, string(conn.sent[0].data), `"totalSamples":120`)
}

func TestPublishError(t *testing.T) {
	p := NewPublisher(&fakeConn{err: errors.New("nats: connection closed")})

	err := p.ModelTrained(context.Background(), models.TrainingMetrics{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), SubjectModelTrained)
}

func TestCloseWithoutConnection(t *testing.T) {
	NewPublisher(&fakeConn{}).Close()
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NoError(t, n.AnomalyDetected(context.Background(), models.LoginEvent{}, models.AnomalyResult{}))
	assert.NoError(t, n.ModelTrained(context.Background(), models.TrainingMetrics{}))
}
