package iforest

import (
	"math"
	"math/rand"
)

// eulerGamma approximates the Euler–Mascheroni constant in the harmonic
// number estimate H(i) ≈ ln(i) + γ.
const eulerGamma = 0.5772156649

// node is one element of a tree stored as a flat slice. Leaves have
// Left == -1 and carry the number of training samples that reached them.
type node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Size      int     `json:"n"`
}

func (n node) leaf() bool {
	return n.Left < 0
}

type tree struct {
	Nodes []node `json:"nodes"`
}

// averagePathLength is c(n), the expected path length of an unsuccessful
// search in a binary search tree built from n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	default:
		fn := float64(n)
		return 2*(math.Log(fn-1)+eulerGamma) - 2*(fn-1)/fn
	}
}

type builder struct {
	rows     [][]float64
	rng      *rand.Rand
	maxDepth int
	nodes    []node
}

func buildTree(rows [][]float64, idx []int, maxDepth int, rng *rand.Rand) tree {
	b := &builder{rows: rows, rng: rng, maxDepth: maxDepth}
	b.grow(idx, 0)
	return tree{Nodes: b.nodes}
}

// grow appends the subtree for idx and returns its position.
func (b *builder) grow(idx []int, depth int) int {
	pos := len(b.nodes)
	b.nodes = append(b.nodes, node{Left: -1, Right: -1, Size: len(idx)})

	if depth >= b.maxDepth || len(idx) <= 1 {
		return pos
	}

	feature, lo, hi, ok := b.pickFeature(idx)
	if !ok {
		return pos
	}

	split := lo + b.rng.Float64()*(hi-lo)
	if split >= hi {
		split = lo
	}

	var left, right []int
	for _, i := range idx {
		if b.rows[i][feature] <= split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[pos] = node{Feature: feature, Threshold: split, Left: l, Right: r, Size: len(idx)}
	return pos
}

// pickFeature chooses uniformly among the features that are not constant
// over idx. ok is false when every feature is constant.
func (b *builder) pickFeature(idx []int) (feature int, lo, hi float64, ok bool) {
	width := len(b.rows[idx[0]])
	candidates := make([]int, 0, width)
	mins := make([]float64, width)
	maxs := make([]float64, width)

	for f := 0; f < width; f++ {
		mn, mx := math.Inf(1), math.Inf(-1)
		for _, i := range idx {
			v := b.rows[i][f]
			mn = math.Min(mn, v)
			mx = math.Max(mx, v)
		}
		mins[f], maxs[f] = mn, mx
		if mx > mn {
			candidates = append(candidates, f)
		}
	}

	if len(candidates) == 0 {
		return 0, 0, 0, false
	}
	f := candidates[b.rng.Intn(len(candidates))]
	return f, mins[f], maxs[f], true
}

// pathLength is the depth at which x is isolated, corrected at the leaf by
// c(size) for the samples the height limit left unseparated.
func (t tree) pathLength(x []float64) float64 {
	i, depth := 0, 0
	for {
		n := t.Nodes[i]
		if n.leaf() {
			return float64(depth) + averagePathLength(n.Size)
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
		depth++
	}
}

// validate checks that every child index points forward inside the slice so
// that pathLength always terminates.
func (t tree) validate(width int) bool {
	if len(t.Nodes) == 0 {
		return false
	}
	for i, n := range t.Nodes {
		if n.Size < 0 {
			return false
		}
		if n.leaf() {
			continue
		}
		if n.Feature < 0 || n.Feature >= width {
			return false
		}
		if n.Left <= i || n.Left >= len(t.Nodes) || n.Right <= i || n.Right >= len(t.Nodes) {
			return false
		}
	}
	return true
}
