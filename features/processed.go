package features

import (
	"fmt"
	"unicode/utf8"
)

// Number of scalar columns that lead every matrix row.
const scalarColumns = 5

// ProcessedPost is the fixed-shape numeric feature record of one post.
type ProcessedPost struct {
	IsSelf           float32 // 1 for self posts, 0 for links
	AuthorPopularity float32
	Downs            float32
	Ups              float32
	Score            float32
	PostLen          float32 // characters of selftext
	WordFreq         []float32
	SymbolFreq       []float32
	RegexMatches     []float32
}

// Columns holds per-post feature outputs aligned by post index.
type Columns struct {
	IsSelf           []float32
	AuthorPopularity []float32
	Downs            []float32
	Ups              []float32
	Score            []float32
	PostLen          []float32
	WordFreq         [][]float32
	SymbolFreq       [][]float32
	RegexMatches     [][]float32
}

// NewColumns allocates columns for n posts.
func NewColumns(n int) Columns {
	return Columns{
		IsSelf:           make([]float32, n),
		AuthorPopularity: make([]float32, n),
		Downs:            make([]float32, n),
		Ups:              make([]float32, n),
		Score:            make([]float32, n),
		PostLen:          make([]float32, n),
		WordFreq:         make([][]float32, n),
		SymbolFreq:       make([][]float32, n),
		RegexMatches:     make([][]float32, n),
	}
}

// setScalars fills the scalar columns of post i that need no shared state.
func (c *Columns) setScalars(i int, p RawPost) {
	if p.IsSelf {
		c.IsSelf[i] = 1
	}
	c.Downs[i] = float32(p.Downs)
	c.Ups[i] = float32(p.Ups)
	c.Score[i] = float32(p.Score)
	c.PostLen[i] = float32(utf8.RuneCountInString(p.Selftext))
}

// Assemble zips aligned columns into one ProcessedPost per post. Every
// column must have exactly n entries.
func Assemble(n int, c Columns) ([]ProcessedPost, error) {
	lengths := []struct {
		name string
		n    int
	}{
		{"is_self", len(c.IsSelf)},
		{"author_popularity", len(c.AuthorPopularity)},
		{"downs", len(c.Downs)},
		{"ups", len(c.Ups)},
		{"score", len(c.Score)},
		{"post_length", len(c.PostLen)},
		{"word_freq", len(c.WordFreq)},
		{"symbol_freq", len(c.SymbolFreq)},
		{"regex_matches", len(c.RegexMatches)},
	}
	for _, l := range lengths {
		if l.n != n {
			return nil, fmt.Errorf("%w: column %s has %d entries for %d posts", ErrLengthMismatch, l.name, l.n, n)
		}
	}

	out := make([]ProcessedPost, n)
	for i := range n {
		out[i] = ProcessedPost{
			IsSelf:           c.IsSelf[i],
			AuthorPopularity: c.AuthorPopularity[i],
			Downs:            c.Downs[i],
			Ups:              c.Ups[i],
			Score:            c.Score[i],
			PostLen:          c.PostLen[i],
			WordFreq:         c.WordFreq[i],
			SymbolFreq:       c.SymbolFreq[i],
			RegexMatches:     c.RegexMatches[i],
		}
	}
	return out, nil
}

// Layout declares the width of every vector block of a feature matrix.
type Layout struct {
	Words    int `json:"words"`
	Symbols  int `json:"symbols"`
	Patterns int `json:"patterns"`
}

// Columns returns the number of matrix columns.
func (l Layout) Columns() int {
	return scalarColumns + l.Words + l.Symbols + l.Patterns
}

// LayoutFor returns the layout of matrices built with the given vocabulary.
func LayoutFor(vocabulary []string) Layout {
	return Layout{
		Words:    len(vocabulary),
		Symbols:  len(Symbols),
		Patterns: len(codePatterns),
	}
}

// ColumnNames returns the matrix column names for a vocabulary, in order.
func ColumnNames(vocabulary []string) []string {
	names := []string{"author_popularity", "downs", "ups", "score", "post_length"}
	for _, w := range vocabulary {
		names = append(names, "word_"+w)
	}
	for _, s := range Symbols {
		names = append(names, "symbol_"+string(s))
	}
	for _, p := range CodePatternNames() {
		names = append(names, "code_"+p)
	}
	return names
}
