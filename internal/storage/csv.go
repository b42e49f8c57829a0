package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/rustsub/features"
)

// Post table columns, in the order they are written. "id" is optional when reading.
var postColumns = []string{"id", "is_self", "author", "url", "downs", "ups", "score", "selftext", "subreddit", "title"}

// ReadPostsCSV reads a post table with a header row. Columns may come in any
// order; unknown columns are ignored.
func ReadPostsCSV(r io.Reader) ([]features.RawPost, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header", features.ErrMalformedPost)
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, name := range postColumns[1:] {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", features.ErrMalformedPost, name)
		}
	}

	var posts []features.RawPost
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", features.ErrMalformedPost, err)
		}
		line, _ := cr.FieldPos(0)
		p, err := parsePost(record, index)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", features.ErrMalformedPost, line, err)
		}
		posts = append(posts, p)
	}
	return posts, nil
}

func parsePost(record []string, index map[string]int) (features.RawPost, error) {
	get := func(name string) string {
		if i, ok := index[name]; ok {
			return record[i]
		}
		return ""
	}
	var (
		p   features.RawPost
		err error
	)
	p.ID = get("id")
	p.Author = get("author")
	p.URL = get("url")
	p.Selftext = get("selftext")
	p.Subreddit = get("subreddit")
	p.Title = get("title")
	if p.IsSelf, err = strconv.ParseBool(get("is_self")); err != nil {
		return p, fmt.Errorf("is_self: %w", err)
	}
	for _, c := range []struct {
		name string
		dst  *uint64
	}{
		{"downs", &p.Downs},
		{"ups", &p.Ups},
		{"score", &p.Score},
	} {
		if *c.dst, err = parseCount(get(c.name)); err != nil {
			return p, fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return p, nil
}

// parseCount parses a vote count. Negative counts are clamped to 0.
func parseCount(s string) (uint64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint64(max(n, 0)), nil
}

// LoadPostsCSV reads a post table from a file.
func LoadPostsCSV(path string) ([]features.RawPost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	posts, err := ReadPostsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return posts, nil
}

// PostWriter writes posts as CSV rows under a single header.
type PostWriter struct {
	w      *csv.Writer
	header bool
}

// NewPostWriter creates a PostWriter. The header is written before the first row.
func NewPostWriter(w io.Writer) *PostWriter {
	return &PostWriter{w: csv.NewWriter(w)}
}

// Write appends posts and flushes them.
func (pw *PostWriter) Write(posts []features.RawPost) error {
	if !pw.header {
		if err := pw.w.Write(postColumns); err != nil {
			return err
		}
		pw.header = true
	}
	for _, p := range posts {
		record := []string{
			p.ID,
			strconv.FormatBool(p.IsSelf),
			p.Author,
			p.URL,
			strconv.FormatUint(p.Downs, 10),
			strconv.FormatUint(p.Ups, 10),
			strconv.FormatUint(p.Score, 10),
			p.Selftext,
			p.Subreddit,
			p.Title,
		}
		if err := pw.w.Write(record); err != nil {
			return err
		}
	}
	pw.w.Flush()
	return pw.w.Error()
}

// WritePostsCSV writes a complete post table.
func WritePostsCSV(w io.Writer, posts []features.RawPost) error {
	return NewPostWriter(w).Write(posts)
}

// WriteMatrixCSV writes one CSV row per matrix row. header may be nil.
func WriteMatrixCSV(w io.Writer, m mat.Matrix, header []string) error {
	r, c := m.Dims()
	if header != nil && len(header) != c {
		return fmt.Errorf("%w: %d header names for %d columns", features.ErrLengthMismatch, len(header), c)
	}
	cw := csv.NewWriter(w)
	if header != nil {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	record := make([]string, c)
	for i := range r {
		for j := range c {
			record[j] = formatFloat(m.At(i, j))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteVectorCSV writes one value per line.
func WriteVectorCSV(w io.Writer, v []float64) error {
	cw := csv.NewWriter(w)
	for _, x := range v {
		if err := cw.Write([]string{formatFloat(x)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
