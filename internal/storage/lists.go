package storage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// WriteList writes one item per line.
func WriteList(w io.Writer, items []string) error {
	bw := bufio.NewWriter(w)
	for i, item := range items {
		if strings.ContainsAny(item, "\r\n") {
			return fmt.Errorf("list item %d contains a line break", i)
		}
		if _, err := bw.WriteString(item + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadList reads one item per line. A trailing newline does not add an item.
func ReadList(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	items := []string{}
	for sc.Scan() {
		items = append(items, sc.Text())
	}
	return items, sc.Err()
}

// SaveList writes a list file.
func SaveList(path string, items []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteList(f, items); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}

// LoadList reads a list file.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	items, err := ReadList(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}
