package vectorizer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/happyhackingspace/rustsub/internal/textutil"
)

// CountVectorizer converts text to word count vectors over an ordered vocabulary.
type CountVectorizer struct {
	Terms  []string `json:"terms"`
	Binary bool     `json:"binary"`
	MinDF  int      `json:"min_df"`

	index map[string]int
}

// NewCountVectorizer creates a CountVectorizer that learns its vocabulary with Fit.
func NewCountVectorizer(binary bool, minDF int) *CountVectorizer {
	if minDF < 1 {
		minDF = 1
	}
	return &CountVectorizer{
		Binary: binary,
		MinDF:  minDF,
	}
}

// NewFixedCountVectorizer creates a CountVectorizer over a given vocabulary.
// Column i of every vector counts terms[i]. Terms must be unique.
func NewFixedCountVectorizer(terms []string) (*CountVectorizer, error) {
	cv := &CountVectorizer{MinDF: 1, Terms: append([]string(nil), terms...)}
	if err := cv.buildIndex(); err != nil {
		return nil, err
	}
	return cv, nil
}

func (cv *CountVectorizer) buildIndex() error {
	cv.index = make(map[string]int, len(cv.Terms))
	for i, term := range cv.Terms {
		if _, ok := cv.index[term]; ok {
			return fmt.Errorf("duplicate term %q", term)
		}
		cv.index[term] = i
	}
	return nil
}

// analyze extracts word features from text.
func (cv *CountVectorizer) analyze(text string) []string {
	return textutil.Words(text)
}

// Fit builds the vocabulary from a corpus.
func (cv *CountVectorizer) Fit(corpus []string) {
	// Count document frequency for each term
	dfCounts := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool)
		for _, f := range cv.analyze(doc) {
			if !seen[f] {
				dfCounts[f]++
				seen[f] = true
			}
		}
	}

	terms := make([]string, 0, len(dfCounts))
	for term, count := range dfCounts {
		if count >= cv.MinDF {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	cv.Terms = terms
	_ = cv.buildIndex()
}

// FitTransform fits the vocabulary and transforms the corpus.
func (cv *CountVectorizer) FitTransform(corpus []string) []SparseVector {
	cv.Fit(corpus)
	result := make([]SparseVector, len(corpus))
	for i, doc := range corpus {
		result[i] = cv.Transform(doc)
	}
	return result
}

// Transform converts a single document to a sparse vector.
func (cv *CountVectorizer) Transform(text string) SparseVector {
	sv := NewSparseVector(len(cv.Terms))

	counts := make(map[int]float64)
	for _, f := range cv.analyze(text) {
		if idx, ok := cv.index[f]; ok {
			counts[idx]++
		}
	}

	for idx, count := range counts {
		if cv.Binary {
			sv.Set(idx, 1.0)
		} else {
			sv.Set(idx, count)
		}
	}
	return sv
}

// Counts returns the dense count vector of text, in vocabulary order.
func (cv *CountVectorizer) Counts(text string) []float32 {
	out := make([]float32, len(cv.Terms))
	for _, f := range cv.analyze(text) {
		if idx, ok := cv.index[f]; ok {
			out[idx]++
		}
	}
	return out
}

// VocabSize returns the vocabulary size.
func (cv *CountVectorizer) VocabSize() int {
	return len(cv.Terms)
}

// UnmarshalJSON implements json.Unmarshaler and rebuilds the term index.
func (cv *CountVectorizer) UnmarshalJSON(data []byte) error {
	type Alias CountVectorizer
	if err := json.Unmarshal(data, (*Alias)(cv)); err != nil {
		return err
	}
	return cv.buildIndex()
}
