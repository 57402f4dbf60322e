package password

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// Charset sizes used by Entropy.
const (
	lowerSize  = 26
	upperSize  = 26
	digitSize  = 10
	symbolSize = 32
)

// guessesPerSecond models a single modern GPU.
const guessesPerSecond = 1e10

const (
	minute = 60.0
	hour   = 3600.0
	day    = 86400.0
	month  = 2592000.0
	year   = 31536000.0
)

// Entropy returns length * log2(charset) in bits, where the charset is the sum
// of the classes present in pw. Any non-alphanumeric rune counts as a symbol.
func Entropy(pw string) float64 {
	var lower, upper, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}

	size := 0
	if lower {
		size += lowerSize
	}
	if upper {
		size += upperSize
	}
	if digit {
		size += digitSize
	}
	if symbol {
		size += symbolSize
	}
	if size == 0 {
		return 0
	}
	return float64(utf8.RuneCountInString(pw)) * math.Log2(float64(size))
}

// CrackTime estimates the average brute-force time for a password of length
// runes drawn from classCount character classes, as a human label.
func CrackTime(length, classCount int) string {
	var charset float64
	switch classCount {
	case 2:
		charset = 52
	case 3:
		charset = 62
	case 4:
		charset = 94
	default:
		charset = 26
	}

	seconds := math.Pow(charset, float64(length)) / (2 * guessesPerSecond)

	switch {
	case seconds < 1:
		return "Instant"
	case seconds < minute:
		return fmt.Sprintf("%d seconds", int64(seconds))
	case seconds < hour:
		return fmt.Sprintf("%d minutes", int64(seconds/minute))
	case seconds < day:
		return fmt.Sprintf("%d hours", int64(seconds/hour))
	case seconds < month:
		return fmt.Sprintf("%d days", int64(seconds/day))
	case seconds < year:
		return fmt.Sprintf("%d months", int64(seconds/month))
	}

	// Floor before converting: the value may be +Inf for long passwords.
	years := math.Floor(seconds / year)
	switch {
	case years > 1e6:
		return "10+ million years"
	case years > 1000:
		return fmt.Sprintf("%dk+ years", int64(years)/1000)
	default:
		return fmt.Sprintf("%d years", int64(years))
	}
}

func roundTo2(f float64) float64 {
	return math.Round(f*100) / 100
}
