package models

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginEvent_Validate(t *testing.T) {
	ok := LoginEvent{Timestamp: "2025-01-15T10:30:00Z", IPAddress: "10.0.0.1", UserAgent: "curl/8"}
	require.NoError(t, ok.Validate())

	err := LoginEvent{IPAddress: "10.0.0.1"}.Validate()
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "timestamp, userAgent")
}

func TestLoginEvent_JSONNames(t *testing.T) {
	raw := `{"userId":"u1","timestamp":"2025-01-15T10:30:00Z","ipAddress":"1.2.3.4",
		"userAgent":"Mozilla/5.0","endpoint":"/api/auth/login",
		"historicalLogins":[{"userId":"u1","timestamp":"2025-01-14T10:30:00Z"}]}`

	var ev LoginEvent
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))

	assert.Equal(t, "u1", ev.UserID)
	assert.Equal(t, "1.2.3.4", ev.IPAddress)
	assert.Equal(t, "/api/auth/login", ev.Endpoint)
	require.Len(t, ev.HistoricalLogins, 1)
	assert.Equal(t, "2025-01-14T10:30:00Z", ev.HistoricalLogins[0].Timestamp)
}
