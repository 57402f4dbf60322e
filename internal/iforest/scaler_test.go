package iforest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler(t *testing.T) {
	rows := [][]float64{
		{1, 5},
		{2, 5},
		{3, 5},
		{4, 5},
	}

	s, err := FitScaler(rows)
	require.NoError(t, err)

	assert.InDeltaSlice(t, []float64{2.5, 5}, s.Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(1.25), s.Scale[0], 1e-12)
	assert.Equal(t, 1.0, s.Scale[1], "constant column keeps unit scale")

	got := s.Transform([]float64{2.5, 7})
	assert.InDeltaSlice(t, []float64{0, 2}, got, 1e-12)
}

func TestFitScaler_StandardizedColumns(t *testing.T) {
	rows := [][]float64{{10}, {20}, {30}, {40}, {50}, {60}}
	s, err := FitScaler(rows)
	require.NoError(t, err)

	z := s.TransformAll(rows)
	var sum, sq float64
	for _, r := range z {
		sum += r[0]
		sq += r[0] * r[0]
	}
	n := float64(len(z))
	assert.InDelta(t, 0, sum/n, 1e-12)
	assert.InDelta(t, 1, sq/n, 1e-12)
}

func TestFitScaler_SingleRow(t *testing.T) {
	s, err := FitScaler([][]float64{{3, 4}})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, s.Scale)
	assert.Equal(t, []float64{0, 0}, s.Transform([]float64{3, 4}))
}

func TestFitScaler_Errors(t *testing.T) {
	_, err := FitScaler(nil)
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = FitScaler([][]float64{{1, 2}, {3}})
	require.ErrorIs(t, err, ErrDimension)
}

func TestScalerPersistence(t *testing.T) {
	s, err := FitScaler([][]float64{{1, 2}, {3, 8}, {5, 5}})
	require.NoError(t, err)

	data, err := MarshalScaler(s)
	require.NoError(t, err)

	got, err := UnmarshalScaler(data)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	for _, bad := range []string{
		`not json`,
		`{}`,
		`{"mean":[1,2],"scale":[1]}`,
		`{"mean":[1],"scale":[0]}`,
	} {
		_, err := UnmarshalScaler([]byte(bad))
		assert.ErrorIs(t, err, ErrCorrupt, bad)
	}
}
