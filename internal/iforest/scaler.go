// Package iforest implements an isolation forest outlier detector together
// with the standard scaler applied to its inputs.
//
// Scores follow the usual convention: ScoreSamples is -2^(-E[h(x)]/c(ψ)), so
// values close to -1 are outliers and values around -0.5 or higher are
// inliers.
package iforest

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrEmptyInput = errors.New("iforest: empty input")
	ErrDimension  = errors.New("iforest: dimension mismatch")
	ErrCorrupt    = errors.New("iforest: corrupt model state")
)

// Scaler standardizes each column to zero mean and unit population variance.
// Columns with zero variance are only centered.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// FitScaler computes per-column mean and standard deviation of rows.
func FitScaler(rows [][]float64) (*Scaler, error) {
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	width := len(rows[0])
	if width == 0 {
		return nil, ErrEmptyInput
	}

	n := len(rows)
	col := make([]float64, n)
	s := &Scaler{Mean: make([]float64, width), Scale: make([]float64, width)}

	for j := 0; j < width; j++ {
		for i, r := range rows {
			if len(r) != width {
				return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(r), width)
			}
			col[i] = r[j]
		}

		mean, variance := stat.MeanVariance(col, nil)
		if n < 2 {
			variance = 0
		} else {
			// MeanVariance is unbiased; rescale to the population variance.
			variance = variance * float64(n-1) / float64(n)
		}

		std := math.Sqrt(variance)
		if std == 0 || math.IsNaN(std) {
			std = 1
		}
		s.Mean[j] = mean
		s.Scale[j] = std
	}

	return s, nil
}

// Transform returns the standardized copy of x.
func (s *Scaler) Transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.Mean[j]) / s.Scale[j]
	}
	return out
}

// TransformAll standardizes every row.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.Transform(r)
	}
	return out
}

// Width is the number of columns the scaler was fitted on.
func (s *Scaler) Width() int {
	return len(s.Mean)
}

func (s *Scaler) validate() error {
	if len(s.Mean) == 0 || len(s.Mean) != len(s.Scale) {
		return fmt.Errorf("%w: scaler has %d means and %d scales", ErrCorrupt, len(s.Mean), len(s.Scale))
	}
	for j, v := range s.Scale {
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: scaler column %d has scale %v", ErrCorrupt, j, v)
		}
	}
	return nil
}

// MarshalScaler encodes s for persistence.
func MarshalScaler(s *Scaler) ([]byte, error) {
	return json.Marshal(s)
}

// UnmarshalScaler decodes and validates a scaler written by MarshalScaler.
func UnmarshalScaler(data []byte) (*Scaler, error) {
	var s Scaler
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
