package password

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy(t *testing.T) {
	assert.Equal(t, 0.0, Entropy(""))
	assert.InDelta(t, 3*math.Log2(26), Entropy("abc"), 1e-9)
	assert.InDelta(t, 4*math.Log2(62), Entropy("aB3c"), 1e-9)
	assert.InDelta(t, 2*math.Log2(32), Entropy("é!"), 1e-9)
	assert.InDelta(t, 4*math.Log2(94), Entropy("aB3!"), 1e-9)
}

func TestEntropy_GrowsWithLength(t *testing.T) {
	prev := -1.0
	for n := 1; n <= 40; n++ {
		pw := ""
		for i := 0; i < n; i++ {
			pw += string(rune('a' + i%26))
		}
		e := Entropy(pw)
		assert.Greater(t, e, prev, n)
		prev = e
	}
}

func TestCrackTime(t *testing.T) {
	tests := []struct {
		length, classes int
		want            string
	}{
		{0, 0, "Instant"},
		{8, 1, "10 seconds"},
		{9, 1, "4 minutes"},
		{8, 2, "44 minutes"},
		{8, 3, "3 hours"},
		{8, 4, "3 days"},
		{9, 4, "11 months"},
		{10, 4, "85 years"},
		{11, 4, "8k+ years"},
		{12, 4, "754k+ years"},
		{16, 4, "10+ million years"},
		{5000, 4, "10+ million years"},
		{8, 0, "10 seconds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CrackTime(tt.length, tt.classes), "length=%d classes=%d", tt.length, tt.classes)
	}
}
