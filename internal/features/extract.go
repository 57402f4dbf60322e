// Package features turns login events into the fixed-length numeric vector
// consumed by the outlier model, and explains which of those features look
// risky.
package features

import (
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/secanalytics/internal/common"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
	"github.com/dmitrijs2005/secanalytics/internal/timex"
	"golang.org/x/crypto/blake2b"
)

// Size is the number of features in a Vector.
const Size = 7

// Positions inside a Vector. The order is the contract with the model.
const (
	HourOfDay = iota
	DayOfWeek
	IsWeekend
	IPHash
	UserAgentHash
	HoursSinceLastLogin
	LoginsInPastDay
)

// MaxHoursSinceLastLogin caps the dormancy feature at one week. It is also the
// value used when there is no history at all.
const MaxHoursSinceLastLogin = 168.0

const hashBuckets = 1000

// Vector is one login event in feature space.
type Vector [Size]float64

// Slice returns the vector as a slice for matrix-oriented code.
func (v Vector) Slice() []float64 {
	out := make([]float64, Size)
	copy(out, v[:])
	return out
}

// Extract builds the feature vector of ev. It fails with common.ErrValidation
// when the event or any history timestamp is not an ISO-8601 instant.
func Extract(ev models.LoginEvent) (Vector, error) {
	ts, err := timex.ParseInstant(ev.Timestamp)
	if err != nil {
		return Vector{}, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	history := make([]time.Time, 0, len(ev.HistoricalLogins))
	for i, h := range ev.HistoricalLogins {
		t, err := timex.ParseInstant(h.Timestamp)
		if err != nil {
			return Vector{}, fmt.Errorf("%w: historicalLogins[%d]: %v", common.ErrValidation, i, err)
		}
		history = append(history, t)
	}

	return Build(ts, ev.IPAddress, ev.UserAgent, history), nil
}

// Build computes the vector from already parsed instants. history must be in
// chronological order; the last element is the most recent login.
func Build(ts time.Time, ip, userAgent string, history []time.Time) Vector {
	ts = ts.UTC()

	var v Vector
	v[HourOfDay] = float64(ts.Hour())

	weekday := mondayFirst(ts.Weekday())
	v[DayOfWeek] = float64(weekday)
	if weekday >= 5 {
		v[IsWeekend] = 1
	}

	v[IPHash] = Fingerprint(ip)
	v[UserAgentHash] = Fingerprint(userAgent)

	v[HoursSinceLastLogin] = MaxHoursSinceLastLogin
	if len(history) > 0 {
		hours := ts.Sub(history[len(history)-1]).Hours()
		v[HoursSinceLastLogin] = math.Min(hours, MaxHoursSinceLastLogin)
	}

	recent := 0
	for _, h := range history {
		if sameDay(ts, h) {
			recent++
		}
	}
	v[LoginsInPastDay] = float64(recent)

	return v
}

// Fingerprint maps s to a stable bucket in [0, 0.999]. It is a coarse
// identity hint for the model and carries no security meaning.
func Fingerprint(s string) float64 {
	sum := blake2b.Sum256([]byte(s))
	bucket := binary.BigEndian.Uint64(sum[:8]) % hashBuckets
	return float64(bucket) / hashBuckets
}

// mondayFirst maps time.Weekday (Sunday=0) to Monday=0 ... Sunday=6.
func mondayFirst(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// sameDay reports whether h happened within the 24 hours up to ts, i.e. the
// whole-day difference between them is zero.
func sameDay(ts, h time.Time) bool {
	d := ts.Sub(h)
	return d >= 0 && d < 24*time.Hour
}
