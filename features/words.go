package features

import (
	"fmt"

	"github.com/happyhackingspace/rustsub/internal/textutil"
	"github.com/happyhackingspace/rustsub/internal/vectorizer"
)

// WordCounter counts occurrences of an ordered vocabulary of interesting words.
type WordCounter struct {
	vocabulary []string
	cv         *vectorizer.CountVectorizer
}

// NewWordCounter creates a WordCounter. The vocabulary must be non-empty,
// unique and already normalized.
func NewWordCounter(vocabulary []string) (*WordCounter, error) {
	if len(vocabulary) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrInvalidVocabulary)
	}
	for _, w := range vocabulary {
		if !textutil.IsWord(w) {
			return nil, fmt.Errorf("%w: %q is not a normalized word", ErrInvalidVocabulary, w)
		}
	}
	cv, err := vectorizer.NewFixedCountVectorizer(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidVocabulary, err)
	}
	return &WordCounter{vocabulary: cv.Terms, cv: cv}, nil
}

// Count returns the count of every vocabulary word in the normalized text,
// in vocabulary order. Words that do not occur count 0.
func (wc *WordCounter) Count(text string) []float32 {
	return wc.cv.Counts(text)
}

// Size returns the vocabulary size.
func (wc *WordCounter) Size() int {
	return len(wc.vocabulary)
}

// Vocabulary returns a copy of the vocabulary in column order.
func (wc *WordCounter) Vocabulary() []string {
	return append([]string(nil), wc.vocabulary...)
}

// WordText is the text whose interesting words are counted for a post.
func WordText(p RawPost) string {
	return p.Selftext + " " + p.Title
}
