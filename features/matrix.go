package features

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Row lays out one processed post as a matrix row:
// author_popularity, downs, ups, score, post_length, then the word, symbol
// and code-pattern blocks.
func Row(p ProcessedPost, layout Layout) ([]float64, error) {
	blocks := []struct {
		name string
		got  int
		want int
	}{
		{"word_freq", len(p.WordFreq), layout.Words},
		{"symbol_freq", len(p.SymbolFreq), layout.Symbols},
		{"regex_matches", len(p.RegexMatches), layout.Patterns},
	}
	for _, b := range blocks {
		if b.got != b.want {
			return nil, fmt.Errorf("%w: %s has %d values, layout wants %d", ErrLengthMismatch, b.name, b.got, b.want)
		}
	}

	row := make([]float64, 0, layout.Columns())
	row = append(row,
		float64(p.AuthorPopularity),
		float64(p.Downs),
		float64(p.Ups),
		float64(p.Score),
		float64(p.PostLen),
	)
	for _, block := range [][]float32{p.WordFreq, p.SymbolFreq, p.RegexMatches} {
		for _, v := range block {
			row = append(row, float64(v))
		}
	}
	return row, nil
}

// BuildMatrix lays out processed posts as a dense matrix with one row per
// post and layout.Columns() columns.
func BuildMatrix(posts []ProcessedPost, layout Layout) (*mat.Dense, error) {
	if len(posts) == 0 {
		return nil, ErrEmptyBatch
	}
	m := mat.NewDense(len(posts), layout.Columns(), nil)
	for i, p := range posts {
		row, err := Row(p, layout)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		m.SetRow(i, row)
	}
	return m, nil
}
