package iforest

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Defaults for Options.
const (
	DefaultTrees         = 100
	DefaultMaxSamples    = 256
	DefaultContamination = 0.1
	DefaultSeed          = 42
)

type Options struct {
	Trees         int
	MaxSamples    int
	Contamination float64
	Seed          int64
}

func DefaultOptions() Options {
	return Options{
		Trees:         DefaultTrees,
		MaxSamples:    DefaultMaxSamples,
		Contamination: DefaultContamination,
		Seed:          DefaultSeed,
	}
}

// Forest is a fitted isolation forest. It is read-only after Fit and safe for
// concurrent use.
type Forest struct {
	Width      int     `json:"width"`
	SampleSize int     `json:"sampleSize"`
	Offset     float64 `json:"offset"`
	Trees      []tree  `json:"trees"`
}

// Fit grows the forest on rows and sets Offset so that roughly
// opts.Contamination of the training rows fall below it.
func Fit(rows [][]float64, opts Options) (*Forest, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyInput
	}
	if opts.Trees <= 0 || opts.MaxSamples <= 0 {
		return nil, fmt.Errorf("iforest: trees and max samples must be positive, got %d and %d", opts.Trees, opts.MaxSamples)
	}
	if opts.Contamination <= 0 || opts.Contamination > 0.5 {
		return nil, fmt.Errorf("iforest: contamination must be in (0, 0.5], got %v", opts.Contamination)
	}

	width := len(rows[0])
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrDimension, i, len(r), width)
		}
	}

	psi := min(opts.MaxSamples, len(rows))
	maxDepth := int(math.Ceil(math.Log2(float64(max(psi, 2)))))

	// Every tree gets its own source seeded from the master one so the
	// result does not depend on goroutine scheduling.
	master := rand.New(rand.NewSource(opts.Seed))
	seeds := make([]int64, opts.Trees)
	for i := range seeds {
		seeds[i] = master.Int63()
	}

	f := &Forest{Width: width, SampleSize: psi, Trees: make([]tree, opts.Trees)}

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range f.Trees {
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			idx := rng.Perm(len(rows))[:psi]
			f.Trees[i] = buildTree(rows, idx, maxDepth, rng)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	scores := f.ScoreSamples(rows)
	f.Offset = Percentile(scores, 100*opts.Contamination)

	return f, nil
}

// Score is the raw anomaly score of x; lower means more abnormal.
func (f *Forest) Score(x []float64) float64 {
	var sum float64
	for _, t := range f.Trees {
		sum += t.pathLength(x)
	}
	mean := sum / float64(len(f.Trees))

	c := averagePathLength(f.SampleSize)
	if c == 0 {
		// A single-sample forest cannot separate anything.
		return -0.5
	}
	return -math.Pow(2, -mean/c)
}

func (f *Forest) ScoreSamples(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = f.Score(r)
	}
	return out
}

// Decision is Score shifted by Offset: negative values are outliers.
func (f *Forest) Decision(x []float64) float64 {
	return f.Score(x) - f.Offset
}

// Predict returns -1 for an outlier and +1 for an inlier.
func (f *Forest) Predict(x []float64) int {
	if f.Decision(x) < 0 {
		return -1
	}
	return 1
}

// Percentile returns the p-th percentile of values using linear
// interpolation between closest ranks. values is not modified.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func Marshal(f *Forest) ([]byte, error) {
	return json.Marshal(f)
}

// Unmarshal decodes a forest written by Marshal and rejects partial or
// inconsistent state.
func Unmarshal(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if f.Width <= 0 || f.SampleSize <= 0 || len(f.Trees) == 0 {
		return nil, fmt.Errorf("%w: width=%d sampleSize=%d trees=%d", ErrCorrupt, f.Width, f.SampleSize, len(f.Trees))
	}
	if math.IsNaN(f.Offset) || math.IsInf(f.Offset, 0) {
		return nil, fmt.Errorf("%w: offset %v", ErrCorrupt, f.Offset)
	}
	for i, t := range f.Trees {
		if !t.validate(f.Width) {
			return nil, fmt.Errorf("%w: tree %d", ErrCorrupt, i)
		}
	}
	return &f, nil
}
