package features

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Extractor computes ProcessedPost records for batches of raw posts using a
// fixed vocabulary and reference author list.
type Extractor struct {
	words     *WordCounter
	reference []string
	workers   int
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithWorkers sets the number of posts processed concurrently.
// Values below 1 fall back to runtime.NumCPU().
func WithWorkers(n int) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewExtractor creates an Extractor. reference is the list of known r/rust
// authors; it may be empty, in which case every author scores 0.
func NewExtractor(vocabulary, reference []string, opts ...ExtractorOption) (*Extractor, error) {
	wc, err := NewWordCounter(vocabulary)
	if err != nil {
		return nil, err
	}
	e := &Extractor{
		words:     wc,
		reference: append([]string(nil), reference...),
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Layout returns the layout of matrices built from this extractor's output.
func (e *Extractor) Layout() Layout {
	return LayoutFor(e.words.vocabulary)
}

// Vocabulary returns the interesting words in column order.
func (e *Extractor) Vocabulary() []string {
	return e.words.Vocabulary()
}

// Extract validates the posts and returns one ProcessedPost per post, in
// input order. Author popularity is scoped to this batch.
func (e *Extractor) Extract(posts []RawPost) ([]ProcessedPost, error) {
	if len(posts) == 0 {
		return nil, ErrEmptyBatch
	}
	if err := Validate(posts); err != nil {
		return nil, err
	}

	authors := make([]string, len(posts))
	for i, p := range posts {
		authors[i] = p.Author
	}
	counts := authorCounts(authors, e.reference)

	cols := NewColumns(len(posts))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i := range posts {
		g.Go(func() error {
			p := posts[i]
			cols.setScalars(i, p)
			cols.AuthorPopularity[i] = float32(counts[p.Author])
			cols.WordFreq[i] = e.words.Count(WordText(p))
			cols.SymbolFreq[i] = SymbolCounts(p.Selftext)
			cols.RegexMatches[i] = CodeMatches(p.Selftext)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return Assemble(len(posts), cols)
}
