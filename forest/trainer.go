// Package forest implements a random forest of binary classification trees.
package forest

import (
	"cmp"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Config holds forest training hyperparameters.
type Config struct {
	Trees           int    `json:"trees"`
	MaxDepth        int    `json:"max_depth"` // 0 means unlimited
	MinSamplesSplit int    `json:"min_samples_split"`
	MinSamplesLeaf  int    `json:"min_samples_leaf"`
	MaxFeatures     int    `json:"max_features"` // 0 means sqrt of the feature count
	Bootstrap       bool   `json:"bootstrap"`
	Seed            uint64 `json:"seed"`
	Workers         int    `json:"-"`
}

// DefaultConfig returns the default training config.
func DefaultConfig() Config {
	return Config{
		Trees:           100,
		MaxDepth:        16,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Bootstrap:       true,
		Seed:            42,
	}
}

// Fit trains the forest on the rows of x with labels y in {0, 1}. Trees are
// fitted concurrently; each tree draws from its own generator seeded with
// (Seed, tree index), so results do not depend on scheduling.
func (f *Forest) Fit(x mat.Matrix, y []float64) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return fmt.Errorf("%w: empty training matrix", ErrDimension)
	}
	if len(y) != r {
		return fmt.Errorf("%w: %d labels for %d rows", ErrDimension, len(y), r)
	}
	labels := make([]int, r)
	for i, v := range y {
		switch v {
		case 0, 1:
			labels[i] = int(v)
		default:
			return fmt.Errorf("%w: row %d has label %v", ErrLabel, i, v)
		}
	}
	rows := make([][]float64, r)
	for i := range r {
		rows[i] = mat.Row(nil, i, x)
	}

	cfg := f.Config
	if cfg.Trees < 1 {
		cfg.Trees = 1
	}
	mtry := cfg.MaxFeatures
	if mtry <= 0 {
		mtry = int(math.Sqrt(float64(c)))
	}
	mtry = min(max(mtry, 1), c)
	workers := cfg.Workers
	if workers < 1 {
		workers = runtime.NumCPU()
	}

	slog.Debug("Fitting forest", "trees", cfg.Trees, "rows", r, "features", c, "mtry", mtry)

	trees := make([]Tree, cfg.Trees)
	var g errgroup.Group
	g.SetLimit(workers)
	for t := range trees {
		g.Go(func() error {
			b := &builder{
				x:        rows,
				y:        labels,
				mtry:     mtry,
				maxDepth: cfg.MaxDepth,
				minSplit: max(cfg.MinSamplesSplit, 2),
				minLeaf:  max(cfg.MinSamplesLeaf, 1),
				rng:      rand.New(rand.NewPCG(cfg.Seed, uint64(t))),
			}
			b.build(b.sample(r, cfg.Bootstrap), 0)
			trees[t] = Tree{Nodes: b.nodes}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	f.NumFeatures = c
	f.Trees = trees
	return nil
}

type builder struct {
	x        [][]float64
	y        []int
	mtry     int
	maxDepth int
	minSplit int
	minLeaf  int
	rng      *rand.Rand
	nodes    []Node
}

// sample returns the row indices a tree is grown on.
func (b *builder) sample(n int, bootstrap bool) []int {
	idx := make([]int, n)
	for i := range idx {
		if bootstrap {
			idx[i] = b.rng.IntN(n)
		} else {
			idx[i] = i
		}
	}
	return idx
}

// build grows the subtree for idx and returns its node index.
func (b *builder) build(idx []int, depth int) int {
	id := len(b.nodes)
	b.nodes = append(b.nodes, Node{Left: -1, Right: -1})

	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}
	b.nodes[id].Prob = float64(pos) / float64(len(idx))

	if pos == 0 || pos == len(idx) || len(idx) < b.minSplit || (b.maxDepth > 0 && depth >= b.maxDepth) {
		return id
	}
	feature, threshold, ok := b.split(idx, pos)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	b.nodes[id].Feature = feature
	b.nodes[id].Threshold = threshold
	b.nodes[id].Left = l
	b.nodes[id].Right = r
	return id
}

// split finds the candidate feature and threshold with the lowest weighted
// gini impurity. ok is false when no split improves on the parent.
func (b *builder) split(idx []int, pos int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	best := gini(pos, n)
	order := make([]int, n)

	for _, f := range b.rng.Perm(len(b.x[0]))[:b.mtry] {
		copy(order, idx)
		slices.SortFunc(order, func(i, j int) int {
			return cmp.Compare(b.x[i][f], b.x[j][f])
		})

		leftPos := 0
		for k := 0; k < n-1; k++ {
			leftPos += b.y[order[k]]
			nl, nr := k+1, n-k-1
			v, next := b.x[order[k]][f], b.x[order[k+1]][f]
			if v == next || nl < b.minLeaf || nr < b.minLeaf {
				continue
			}
			imp := (float64(nl)*gini(leftPos, nl) + float64(nr)*gini(pos-leftPos, nr)) / float64(n)
			if imp < best-1e-12 {
				best = imp
				feature = f
				threshold = v + (next-v)/2
				if threshold >= next {
					threshold = v
				}
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// gini is the impurity of a node holding pos class 1 samples out of n.
func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
