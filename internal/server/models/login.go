package models

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/secanalytics/internal/common"
)

// LoginEvent is a single successful login together with the caller-supplied
// history that preceded it. Timestamp is kept in its ISO-8601 wire form and
// parsed by the feature extractor.
type LoginEvent struct {
	UserID           string       `json:"userId"`
	Timestamp        string       `json:"timestamp"`
	IPAddress        string       `json:"ipAddress"`
	UserAgent        string       `json:"userAgent"`
	Endpoint         string       `json:"endpoint,omitempty"`
	HistoricalLogins []LoginEvent `json:"historicalLogins,omitempty"`
}

// Validate checks that the fields required for detection are present.
func (e LoginEvent) Validate() error {
	var missing []string
	if strings.TrimSpace(e.Timestamp) == "" {
		missing = append(missing, "timestamp")
	}
	if strings.TrimSpace(e.IPAddress) == "" {
		missing = append(missing, "ipAddress")
	}
	if strings.TrimSpace(e.UserAgent) == "" {
		missing = append(missing, "userAgent")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s", common.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
