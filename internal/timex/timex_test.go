package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{name: "string", in: `"90s"`, want: 90 * time.Second},
		{name: "nanoseconds", in: `1000000000`, want: time.Second},
		{name: "bad string", in: `"soon"`, wantErr: true},
		{name: "bool", in: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{Duration: 2 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"2m0s"`, string(b))
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2025-01-15T10:30:00.000Z", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T10:30:00Z", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T12:30:00+02:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T10:30:00", time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2025-01-15T10:30:00.250", time.Date(2025, 1, 15, 10, 30, 0, 250_000_000, time.UTC)},
		{"2025-01-15", time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInstant(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseInstant_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "15/01/2025 10:30", "2025-13-45T99:00:00Z"} {
		_, err := ParseInstant(in)
		assert.Error(t, err, in)
	}
}
