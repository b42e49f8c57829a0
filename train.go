package rustsub

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"unicode/utf8"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/forest"
)

// ErrTooFewPosts is returned when a batch is too small to train or split.
var ErrTooFewPosts = errors.New("rustsub: too few posts")

// TrainConfig holds configuration for training.
type TrainConfig struct {
	// Posts whose selftext has MinSelftextLen characters or fewer are dropped.
	MinSelftextLen int
	ShuffleSeed    uint64
	Threshold      float64
	Workers        int
	Forest         forest.Config
	// NewLearner overrides the forest learner.
	NewLearner func() Learner
}

// DefaultTrainConfig returns the default training configuration.
func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		MinSelftextLen: 8,
		ShuffleSeed:    1,
		Threshold:      DefaultThreshold,
		Forest:         forest.DefaultConfig(),
	}
}

func (tc *TrainConfig) learner() Learner {
	if tc.NewLearner != nil {
		return tc.NewLearner()
	}
	cfg := tc.Forest
	if cfg.Workers == 0 {
		cfg.Workers = tc.Workers
	}
	return forest.New(cfg)
}

// Dataset is a prepared training batch and its feature matrix.
type Dataset struct {
	Posts   []features.RawPost
	Authors []string
	Names   []string
	X       *mat.Dense
	Y       []float64
}

// Prepare drops posts with short selftext, removes duplicate titles and
// shuffles the rest deterministically.
func Prepare(posts []features.RawPost, minSelftextLen int, seed uint64) []features.RawPost {
	kept := lo.Filter(posts, func(p features.RawPost, _ int) bool {
		return utf8.RuneCountInString(p.Selftext) > minSelftextLen
	})
	kept = features.Dedup(kept)
	rng := rand.New(rand.NewPCG(seed, 0))
	rng.Shuffle(len(kept), func(i, j int) {
		kept[i], kept[j] = kept[j], kept[i]
	})
	return kept
}

// BuildDataset prepares posts and builds their feature matrix and labels.
// The reference authors are the r/rust authors of the prepared batch.
func BuildDataset(posts []features.RawPost, vocabulary []string, config *TrainConfig) (*Dataset, error) {
	cfg := DefaultTrainConfig()
	if config != nil {
		cfg = *config
	}
	prepared := Prepare(posts, cfg.MinSelftextLen, cfg.ShuffleSeed)
	if len(prepared) == 0 {
		return nil, fmt.Errorf("%w: no posts left after filtering %d", ErrTooFewPosts, len(posts))
	}
	slog.Debug("Prepared posts", "input", len(posts), "kept", len(prepared))
	return buildDataset(prepared, vocabulary, cfg.Workers)
}

func buildDataset(posts []features.RawPost, vocabulary []string, workers int) (*Dataset, error) {
	authors := features.ReferenceAuthors(posts, features.SubRust)
	ex, err := features.NewExtractor(vocabulary, authors, features.WithWorkers(workers))
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	processed, err := ex.Extract(posts)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	x, err := features.BuildMatrix(processed, ex.Layout())
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	y, err := features.DefaultLabels().EncodeAll(posts)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	return &Dataset{
		Posts:   posts,
		Authors: authors,
		Names:   features.ColumnNames(ex.Vocabulary()),
		X:       x,
		Y:       y,
	}, nil
}

// Train trains a classifier on raw posts with the given interesting-word vocabulary.
func Train(posts []features.RawPost, vocabulary []string, config *TrainConfig) (*Classifier, error) {
	cfg := DefaultTrainConfig()
	if config != nil {
		cfg = *config
	}
	ds, err := BuildDataset(posts, vocabulary, &cfg)
	if err != nil {
		return nil, err
	}
	return fit(ds, vocabulary, &cfg)
}

func fit(ds *Dataset, vocabulary []string, cfg *TrainConfig) (*Classifier, error) {
	rows, cols := ds.X.Dims()
	playrust := lo.Count(ds.Y, 1)
	if playrust == 0 || playrust == rows {
		slog.Warn("Training set has a single class", "posts", rows)
	}
	slog.Info("Fitting model", "posts", rows, "columns", cols, "playrust", playrust)

	learner := cfg.learner()
	if err := learner.Fit(ds.X, ds.Y); err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	c, err := NewClassifier(learner, vocabulary, ds.Authors, cfg.Workers)
	if err != nil {
		return nil, err
	}
	c.Threshold = cfg.Threshold
	c.Posts = rows
	return c, nil
}

// HoldoutResult reports the accuracy of a single train/test split.
type HoldoutResult struct {
	Hits   int
	Misses int
	Train  int
	Test   int
}

// Accuracy returns hits / (hits + misses).
func (r *HoldoutResult) Accuracy() float64 {
	if r.Hits+r.Misses == 0 {
		return 0
	}
	return float64(r.Hits) / float64(r.Hits+r.Misses)
}

// Holdout trains on all but the first ninth of the prepared posts and tests
// on that ninth. The matrix is built once over the whole batch.
func Holdout(posts []features.RawPost, vocabulary []string, config *TrainConfig) (*HoldoutResult, error) {
	cfg := DefaultTrainConfig()
	if config != nil {
		cfg = *config
	}
	ds, err := BuildDataset(posts, vocabulary, &cfg)
	if err != nil {
		return nil, err
	}
	n, cols := ds.X.Dims()
	split := n / 9
	if split == 0 {
		return nil, fmt.Errorf("%w: %d posts cannot be split 1/9", ErrTooFewPosts, n)
	}

	test := ds.X.Slice(0, split, 0, cols)
	train := ds.X.Slice(split, n, 0, cols)

	learner := cfg.learner()
	if err := learner.Fit(train, ds.Y[split:]); err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	scores, err := learner.Predict(test)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}

	res := &HoldoutResult{Train: n - split, Test: split}
	for i, s := range scores {
		pred := 0.0
		if s > cfg.Threshold {
			pred = 1
		}
		if pred == ds.Y[i] {
			res.Hits++
		} else {
			res.Misses++
		}
	}
	return res, nil
}
