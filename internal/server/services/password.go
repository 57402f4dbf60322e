package services

import (
	"context"

	"github.com/dmitrijs2005/secanalytics/internal/logging"
	"github.com/dmitrijs2005/secanalytics/internal/password"
	"github.com/dmitrijs2005/secanalytics/internal/server/models"
)

type PasswordService struct {
	analyzer *password.Analyzer
	logger   logging.Logger
	metrics  Recorder
}

// NewPasswordService wraps analyzer; a nil recorder disables metrics.
func NewPasswordService(analyzer *password.Analyzer, logger logging.Logger, r Recorder) *PasswordService {
	if r == nil {
		r = nopRecorder{}
	}
	return &PasswordService{
		analyzer: analyzer,
		logger:   logger.With("module", "password"),
		metrics:  r,
	}
}

// Analyze never logs the password itself.
func (s *PasswordService) Analyze(ctx context.Context, pw string) models.PasswordAnalysis {
	res := s.analyzer.Analyze(pw)
	s.metrics.PasswordAnalysis(res.Strength)
	s.logger.Debug(ctx, "password analysed", "score", res.Score, "strength", res.Strength)
	return res
}
