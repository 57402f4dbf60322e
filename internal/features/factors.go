package features

import "github.com/dmitrijs2005/secanalytics/internal/server/models"

// Factor texts returned by Explain.
const (
	FactorUnusualTime     = "Unusual login time (late night/early morning)"
	FactorDormant         = "Long time since last login (inactive account)"
	FactorAutomated       = "Very frequent logins (possible automated access)"
	FactorBruteForce      = "High login frequency in 24h (possible brute force)"
	FactorWeekend         = "Weekend login activity"
	FactorNoneIdentified  = "No specific risk factors identified"
	dormantAfterHours     = 72
	automatedWithinHours  = 0.5
	bruteForceDailyLogins = 5
)

// Explain lists the human-readable risk factors present in v. The checks are
// independent and always appended in the same order. The weekend factor only
// fires for events that carry an endpoint.
func Explain(v Vector, ev models.LoginEvent) []string {
	var factors []string

	if hour := v[HourOfDay]; hour < 6 || hour > 22 {
		factors = append(factors, FactorUnusualTime)
	}

	if since := v[HoursSinceLastLogin]; since > dormantAfterHours {
		factors = append(factors, FactorDormant)
	} else if since < automatedWithinHours {
		factors = append(factors, FactorAutomated)
	}

	if v[LoginsInPastDay] > bruteForceDailyLogins {
		factors = append(factors, FactorBruteForce)
	}

	if v[IsWeekend] == 1 && ev.Endpoint != "" {
		factors = append(factors, FactorWeekend)
	}

	if len(factors) == 0 {
		return []string{FactorNoneIdentified}
	}
	return factors
}
