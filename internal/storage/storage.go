// Package storage reads and writes the post tables, word lists and feature
// matrices used to train and run the classifier.
package storage

import (
	"path/filepath"
	"strings"

	"golang.org/x/net/publicsuffix"
)

// Default file names inside a data folder.
const (
	PostsFile      = "posts.csv"
	VocabularyFile = "words_of_interest"
	AuthorsFile    = "rust_author_list"
	ModelFile      = "model.json"
	DatabaseFile   = "posts.db"
	FeaturesFile   = "features"
	TruthFile      = "truth"
)

// Storage wraps the data folder.
type Storage struct {
	Folder string
}

// NewStorage creates a Storage for the given data folder.
func NewStorage(folder string) *Storage {
	return &Storage{Folder: folder}
}

// Path resolves name inside the data folder. Absolute paths and paths
// starting with "./" are returned unchanged.
func (s *Storage) Path(name string) string {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "./") || s.Folder == "" {
		return name
	}
	return filepath.Join(s.Folder, name)
}

// GetDomain extracts the domain name from a URL (for grouped cross-validation).
func GetDomain(rawURL string) string {
	// Extract host from URL
	host := rawURL
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	if idx := strings.IndexAny(host, "/?#"); idx >= 0 {
		host = host[:idx]
	}
	if idx := strings.Index(host, ":"); idx >= 0 {
		host = host[:idx]
	}
	host = strings.ToLower(host)

	// Use publicsuffix to find the eTLD+1, then extract just the domain
	domain, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return host
	}
	// domain is like "example.co.uk", we want just "example"
	if idx := strings.Index(domain, "."); idx >= 0 {
		return domain[:idx]
	}
	return domain
}
