package features

import (
	"fmt"
	"strings"
)

// Subreddits of the two classes.
const (
	SubRust     = "rust"
	SubPlayRust = "playrust"
)

// LabelEncoder maps subreddit names to numeric class labels.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// DefaultLabels maps "rust" to 0 and "playrust" to 1.
func DefaultLabels() LabelEncoder {
	return LabelEncoder{Classes: []string{SubRust, SubPlayRust}}
}

// Encode returns the label of a subreddit.
func (e LabelEncoder) Encode(subreddit string) (float64, error) {
	for i, c := range e.Classes {
		if strings.EqualFold(c, subreddit) {
			return float64(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSubreddit, subreddit)
}

// EncodeAll returns the labels of all posts. Any unknown subreddit fails the batch.
func (e LabelEncoder) EncodeAll(posts []RawPost) ([]float64, error) {
	labels := make([]float64, len(posts))
	for i, p := range posts {
		l, err := e.Encode(p.Subreddit)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", i, err)
		}
		labels[i] = l
	}
	return labels, nil
}

// Decode returns the subreddit of a label.
func (e LabelEncoder) Decode(label int) (string, error) {
	if label < 0 || label >= len(e.Classes) {
		return "", fmt.Errorf("%w: label %d", ErrUnknownSubreddit, label)
	}
	return e.Classes[label], nil
}
