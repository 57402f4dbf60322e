// Package password scores password strength with fixed heuristics: length,
// character classes, dictionary and pattern hits, repeats, sequences and an
// entropy estimate.
package password

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

// Findings reported by Analyze. Vulnerabilities and suggestions are paired.
const (
	VulnTooShort   = "Password too short (minimum 8 characters)"
	VulnNoUpper    = "No uppercase letters"
	VulnNoLower    = "No lowercase letters"
	VulnNoDigit    = "No numbers"
	VulnNoSpecial  = "No special characters"
	VulnCommon     = "Common password - easily guessable"
	VulnRepeated   = "Repeated characters detected (e.g., aaa, 111)"
	VulnSequential = "Sequential characters detected (e.g., 123, abc)"
	VulnLowEntropy = "Low entropy (not random enough)"

	SuggestLength     = "Use at least 8 characters"
	SuggestUpper      = "Add uppercase letters (A-Z)"
	SuggestLower      = "Add lowercase letters (a-z)"
	SuggestDigit      = "Add numbers (0-9)"
	SuggestSpecial    = "Add special characters (!@#$%^&*)"
	SuggestUnique     = "Use a unique, unpredictable password"
	SuggestPatterns   = "Avoid common patterns and sequences"
	SuggestRepeats    = "Avoid repeating characters"
	SuggestSequential = "Avoid sequential patterns"
	SuggestLooksGood  = "Password looks good!"
)

const patternPrefix = "Contains common pattern: "

// specialChars is the set that counts as "special" for class scoring.
const specialChars = "!@#$%^&*(),.?\":{}|<>-_=+[]\\/~`"

var defaultCommon = []string{
	"password", "123456", "12345678", "qwerty", "abc123",
	"monkey", "1234567", "letmein", "trustno1", "dragon",
	"baseball", "111111", "iloveyou", "master", "sunshine",
	"ashley", "bailey", "passw0rd", "shadow", "123123",
	"welcome", "admin", "password1", "password123",
	"football", "michael", "charlie", "superman", "computer",
	"qwertyuiop", "asdfghjkl", "zxcvbnm", "princess", "starwars",
}

var defaultPatterns = []string{"12345", "qwerty", "abc", "password", "admin", "user", "login", "pass"}

// Analyzer holds the dictionaries. It is immutable and safe for concurrent
// use.
type Analyzer struct {
	common   map[string]struct{}
	patterns []string
}

// NewAnalyzer returns an Analyzer with the built-in dictionary and patterns.
func NewAnalyzer() *Analyzer {
	common := make(map[string]struct{}, len(defaultCommon))
	for _, p := range defaultCommon {
		common[p] = struct{}{}
	}
	return &Analyzer{common: common, patterns: defaultPatterns}
}

var defaultAnalyzer = NewAnalyzer()

// Analyze scores pw with the default Analyzer.
func Analyze(pw string) models.PasswordAnalysis {
	return defaultAnalyzer.Analyze(pw)
}

type classes struct {
	lower, upper, digit, special bool
}

func (c classes) count() int {
	n := 0
	for _, ok := range []bool{c.lower, c.upper, c.digit, c.special} {
		if ok {
			n++
		}
	}
	return n
}

func classify(pw string) classes {
	var c classes
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			c.lower = true
		case r >= 'A' && r <= 'Z':
			c.upper = true
		case r >= '0' && r <= '9':
			c.digit = true
		case strings.ContainsRune(specialChars, r):
			c.special = true
		}
	}
	return c
}

// Analyze applies the scoring rules in order and never fails.
func (a *Analyzer) Analyze(pw string) models.PasswordAnalysis {
	score := 0
	vulns := make([]string, 0)
	suggestions := make([]string, 0)

	add := func(v, s string) {
		vulns = append(vulns, v)
		if s != "" {
			suggestions = append(suggestions, s)
		}
	}
	penalize := func(n int) {
		score = max(0, score-n)
	}

	length := utf8.RuneCountInString(pw)
	if length < 8 {
		add(VulnTooShort, SuggestLength)
	} else {
		score += 20
	}
	if length >= 12 {
		score += 10
	}
	if length >= 16 {
		score += 10
	}

	c := classify(pw)
	score += c.count() * 15
	if !c.upper {
		add(VulnNoUpper, SuggestUpper)
	}
	if !c.lower {
		add(VulnNoLower, SuggestLower)
	}
	if !c.digit {
		add(VulnNoDigit, SuggestDigit)
	}
	if !c.special {
		add(VulnNoSpecial, SuggestSpecial)
	}

	lower := strings.ToLower(pw)
	if _, ok := a.common[lower]; ok {
		penalize(50)
		add(VulnCommon, SuggestUnique)
	}

	for _, p := range a.patterns {
		if strings.Contains(lower, p) {
			penalize(20)
			add(PatternFinding(p), SuggestPatterns)
			break
		}
	}

	if hasRepeat(pw) {
		penalize(10)
		add(VulnRepeated, SuggestRepeats)
	}

	if hasSequence(pw) {
		penalize(15)
		add(VulnSequential, SuggestSequential)
	}

	entropy := Entropy(pw)
	switch {
	case entropy > 60:
		score += 10
	case entropy < 30:
		penalize(10)
		add(VulnLowEntropy, "")
	}

	score = min(100, score)

	if len(suggestions) == 0 {
		suggestions = append(suggestions, SuggestLooksGood)
	}

	return models.PasswordAnalysis{
		Score:              score,
		Strength:           Strength(score),
		Vulnerabilities:    vulns,
		Suggestions:        suggestions,
		EstimatedCrackTime: CrackTime(length, c.count()),
		Entropy:            roundTo2(entropy),
	}
}

// Strength maps a 0..100 score to its bucket.
func Strength(score int) string {
	switch {
	case score < 40:
		return models.StrengthWeak
	case score < 60:
		return models.StrengthMedium
	case score < 80:
		return models.StrengthStrong
	default:
		return models.StrengthVeryStrong
	}
}

// hasRepeat reports a run of three or more identical characters.
func hasRepeat(pw string) bool {
	run := 0
	var prev rune
	for i, r := range []rune(pw) {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= 3 {
			return true
		}
		prev = r
	}
	return false
}

// hasSequence reports three consecutive ascending digits (123) or letters
// (abc, case-insensitive).
func hasSequence(pw string) bool {
	rs := []rune(pw)
	for i := 0; i+2 < len(rs); i++ {
		a, b, c := rs[i], rs[i+1], rs[i+2]
		switch {
		case isDigit(a) && isDigit(b) && isDigit(c):
			if b == a+1 && c == b+1 {
				return true
			}
		case unicode.IsLetter(a) && unicode.IsLetter(b) && unicode.IsLetter(c):
			a, b, c = unicode.ToLower(a), unicode.ToLower(b), unicode.ToLower(c)
			if b == a+1 && c == b+1 {
				return true
			}
		}
	}
	return false
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

// PatternFinding formats the vulnerability reported for a pattern hit.
func PatternFinding(pattern string) string {
	return fmt.Sprintf("%s%s", patternPrefix, pattern)
}
