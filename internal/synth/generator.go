// Package synth generates plausible, chronological login records for local
// development and tests: a few users with stable devices logging in during
// office hours, plus a small share of odd-hour logins from unknown devices.
package synth

import (
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

// LoginEndpoint is recorded on every generated login.
const LoginEndpoint = "/api/auth/login"

type user struct {
	id        string
	ip        string
	userAgent string
}

type Generator struct {
	faker     *gofakeit.Faker
	users     []user
	clock     time.Time
	oddChance int // percent
}

// New returns a generator whose output is fully determined by seed. The
// first login happens shortly after start.
func New(seed uint64, start time.Time, users int) *Generator {
	faker := gofakeit.New(seed)
	if users <= 0 {
		users = 1
	}

	g := &Generator{faker: faker, clock: start.UTC(), oddChance: 5}
	for i := 0; i < users; i++ {
		g.users = append(g.users, user{
			id:        faker.Username(),
			ip:        faker.IPv4Address(),
			userAgent: faker.UserAgent(),
		})
	}
	return g
}

// Logins returns the next n logins in chronological order.
func (g *Generator) Logins(n int) []models.LoginEvent {
	out := make([]models.LoginEvent, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.next())
	}
	return out
}

func (g *Generator) next() models.LoginEvent {
	u := g.users[g.faker.Number(0, len(g.users)-1)]

	if g.faker.Number(1, 100) <= g.oddChance {
		g.advanceTo(g.faker.Number(0, 4))
		return models.LoginEvent{
			UserID:    u.id,
			Timestamp: g.clock.Format(time.RFC3339),
			IPAddress: g.faker.IPv4Address(),
			UserAgent: g.faker.UserAgent(),
			Endpoint:  LoginEndpoint,
		}
	}

	g.advanceTo(g.faker.Number(8, 18))
	return models.LoginEvent{
		UserID:    u.id,
		Timestamp: g.clock.Format(time.RFC3339),
		IPAddress: u.ip,
		UserAgent: u.userAgent,
		Endpoint:  LoginEndpoint,
	}
}

// advanceTo moves the clock forward by at least a few minutes, landing on
// the given hour of a weekday.
func (g *Generator) advanceTo(hour int) {
	t := g.clock.Add(time.Duration(g.faker.Number(5, 90)) * time.Minute)
	if t.Hour() > hour {
		t = t.AddDate(0, 0, 1)
	}
	for t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		t = t.AddDate(0, 0, 1)
	}
	minute := g.faker.Number(0, 59)
	candidate := time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, time.UTC)
	if !candidate.After(g.clock) {
		candidate = g.clock.Add(time.Minute)
	}
	g.clock = candidate
}
