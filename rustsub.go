// Package rustsub classifies Reddit posts as coming from r/rust or r/playrust.
//
// A Classifier bundles a random forest with the interesting-word vocabulary
// and the reference r/rust author list it was trained with, so prediction
// matrices always have the training layout.
//
//	c, _ := rustsub.Load("data/model.json")
//	preds, _ := c.Predict(posts)
//	for _, p := range preds {
//	    fmt.Println(p.Title, p.Subreddit) // "Base got raided" "playrust"
//	}
package rustsub

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/forest"
)

// DefaultThreshold is the score above which a post is assigned to r/playrust.
const DefaultThreshold = 0.6

var (
	ErrNotInitialized = errors.New("rustsub: classifier not initialized")
	ErrLayoutMismatch = errors.New("rustsub: model layout does not match its vocabulary")
)

// Learner fits and applies a binary classifier over feature matrices.
// Predict returns the class 1 score of every row.
type Learner interface {
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
}

// Classifier is a trained model bundle.
type Classifier struct {
	ID         string
	CreatedAt  time.Time
	Vocabulary []string
	Authors    []string
	Labels     features.LabelEncoder
	Threshold  float64
	Layout     features.Layout
	Posts      int

	learner   Learner
	extractor *features.Extractor
}

// Prediction is the classification of one post.
type Prediction struct {
	ID        string  `json:"id,omitempty"`
	Title     string  `json:"title"`
	Author    string  `json:"author"`
	Score     float64 `json:"score"`
	Subreddit string  `json:"subreddit"`
}

// Info summarizes a model bundle.
type Info struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Posts      int       `json:"posts"`
	Vocabulary int       `json:"vocabulary"`
	Authors    int       `json:"authors"`
	Columns    int       `json:"columns"`
	Threshold  float64   `json:"threshold"`
	Classes    []string  `json:"classes"`
}

// bundle is the on-disk form of a Classifier.
type bundle struct {
	ID         string                `json:"id"`
	CreatedAt  time.Time             `json:"created_at"`
	Vocabulary []string              `json:"vocabulary"`
	Authors    []string              `json:"authors"`
	Labels     features.LabelEncoder `json:"labels"`
	Threshold  float64               `json:"threshold"`
	Layout     features.Layout       `json:"layout"`
	Posts      int                   `json:"posts"`
	Forest     *forest.Forest        `json:"forest"`
}

// NewClassifier wraps a fitted learner with the lists its training matrix
// was built from.
func NewClassifier(learner Learner, vocabulary, authors []string, workers int) (*Classifier, error) {
	ex, err := features.NewExtractor(vocabulary, authors, features.WithWorkers(workers))
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	return &Classifier{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Vocabulary: ex.Vocabulary(),
		Authors:    append([]string(nil), authors...),
		Labels:     features.DefaultLabels(),
		Threshold:  DefaultThreshold,
		Layout:     ex.Layout(),
		learner:    learner,
		extractor:  ex,
	}, nil
}

// Load loads a trained classifier from a model file.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	c, err := Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w (%s)", err, path)
	}
	return c, nil
}

// Unmarshal decodes a classifier serialized with Marshal.
func Unmarshal(data []byte) (*Classifier, error) {
	var b bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	if b.Forest == nil {
		return nil, ErrNotInitialized
	}
	if b.Layout != features.LayoutFor(b.Vocabulary) {
		return nil, ErrLayoutMismatch
	}
	if b.Forest.NumFeatures != b.Layout.Columns() {
		return nil, fmt.Errorf("%w: forest expects %d columns, layout has %d", ErrLayoutMismatch, b.Forest.NumFeatures, b.Layout.Columns())
	}
	ex, err := features.NewExtractor(b.Vocabulary, b.Authors)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	return &Classifier{
		ID:         b.ID,
		CreatedAt:  b.CreatedAt,
		Vocabulary: b.Vocabulary,
		Authors:    b.Authors,
		Labels:     b.Labels,
		Threshold:  b.Threshold,
		Layout:     b.Layout,
		Posts:      b.Posts,
		learner:    b.Forest,
		extractor:  ex,
	}, nil
}

// Marshal serializes the classifier to JSON. Only forest learners can be serialized.
func (c *Classifier) Marshal() ([]byte, error) {
	if c == nil || c.learner == nil {
		return nil, ErrNotInitialized
	}
	f, ok := c.learner.(*forest.Forest)
	if !ok {
		return nil, fmt.Errorf("rustsub: cannot serialize learner %T", c.learner)
	}
	return json.Marshal(bundle{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		Vocabulary: c.Vocabulary,
		Authors:    c.Authors,
		Labels:     c.Labels,
		Threshold:  c.Threshold,
		Layout:     c.Layout,
		Posts:      c.Posts,
		Forest:     f,
	})
}

// Save writes the classifier to a model file.
func (c *Classifier) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("rustsub: %w", err)
	}
	return nil
}

// Info returns a summary of the bundle.
func (c *Classifier) Info() Info {
	return Info{
		ID:         c.ID,
		CreatedAt:  c.CreatedAt,
		Posts:      c.Posts,
		Vocabulary: len(c.Vocabulary),
		Authors:    len(c.Authors),
		Columns:    c.Layout.Columns(),
		Threshold:  c.Threshold,
		Classes:    c.Labels.Classes,
	}
}

// Matrix builds the feature matrix of a batch with the classifier's
// vocabulary and reference authors. Author popularity is scoped to the batch.
func (c *Classifier) Matrix(posts []features.RawPost) (*mat.Dense, error) {
	if c == nil || c.extractor == nil {
		return nil, ErrNotInitialized
	}
	processed, err := c.extractor.Extract(posts)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	m, err := features.BuildMatrix(processed, c.Layout)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}
	return m, nil
}

// Predict classifies a batch of posts. A post goes to the class 1 subreddit
// when its score is above the threshold.
func (c *Classifier) Predict(posts []features.RawPost) ([]Prediction, error) {
	if c == nil || c.learner == nil {
		return nil, ErrNotInitialized
	}
	m, err := c.Matrix(posts)
	if err != nil {
		return nil, err
	}
	scores, err := c.learner.Predict(m)
	if err != nil {
		return nil, fmt.Errorf("rustsub: %w", err)
	}

	out := make([]Prediction, len(posts))
	for i, p := range posts {
		label := 0
		if scores[i] > c.Threshold {
			label = 1
		}
		sub, err := c.Labels.Decode(label)
		if err != nil {
			return nil, fmt.Errorf("rustsub: %w", err)
		}
		out[i] = Prediction{
			ID:        p.ID,
			Title:     p.Title,
			Author:    p.Author,
			Score:     scores[i],
			Subreddit: sub,
		}
	}
	return out, nil
}
