package forest

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted = errors.New("forest: model is not fitted")
	ErrDimension = errors.New("forest: dimension mismatch")
	ErrLabel     = errors.New("forest: labels must be 0 or 1")
)

// Node is a split or a leaf of a tree. Leaves have Left == Right == -1.
type Node struct {
	Feature   int     `json:"f"`
	Threshold float64 `json:"t"`
	Left      int     `json:"l"`
	Right     int     `json:"r"`
	Prob      float64 `json:"p"` // fraction of class 1 samples that reached the node
}

// Tree is a binary classification tree stored as a flat node list rooted at 0.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Leaf returns the node a sample ends up in.
func (t *Tree) Leaf(x []float64) *Node {
	n := &t.Nodes[0]
	for n.Left >= 0 {
		if x[n.Feature] <= n.Threshold {
			n = &t.Nodes[n.Left]
		} else {
			n = &t.Nodes[n.Right]
		}
	}
	return n
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *Tree) Depth() int {
	var depth func(i int) int
	depth = func(i int) int {
		n := t.Nodes[i]
		if n.Left < 0 {
			return 0
		}
		return 1 + max(depth(n.Left), depth(n.Right))
	}
	return depth(0)
}

// Forest is a fitted or unfitted random forest.
type Forest struct {
	Config      Config `json:"config"`
	NumFeatures int    `json:"num_features"`
	Trees       []Tree `json:"trees"`
}

// New creates an unfitted forest.
func New(cfg Config) *Forest {
	return &Forest{Config: cfg}
}

// Predict returns, for every row of x, the mean class 1 probability of the
// leaves the row reaches.
func (f *Forest) Predict(x mat.Matrix) ([]float64, error) {
	if len(f.Trees) == 0 {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != f.NumFeatures {
		return nil, fmt.Errorf("%w: got %d columns, fitted on %d", ErrDimension, c, f.NumFeatures)
	}
	out := make([]float64, r)
	row := make([]float64, c)
	for i := range r {
		mat.Row(row, i, x)
		var sum float64
		for t := range f.Trees {
			sum += f.Trees[t].Leaf(row).Prob
		}
		out[i] = sum / float64(len(f.Trees))
	}
	return out, nil
}
