// Package features turns raw Reddit posts into a fixed-width feature matrix.
//
// The pipeline deduplicates posts, extracts per-post scalar and vector
// features in parallel, zips them into ProcessedPost records and lays those
// out as rows of a matrix whose columns are fixed by a Layout:
//
//	ex, _ := features.NewExtractor(vocabulary, referenceAuthors)
//	processed, _ := ex.Extract(posts)
//	m, _ := features.BuildMatrix(processed, ex.Layout())
package features

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// RawPost is one unprocessed post as collected from Reddit.
type RawPost struct {
	ID        string `json:"name,omitempty" csv:"id"`
	IsSelf    bool   `json:"is_self" csv:"is_self"`
	Author    string `json:"author" csv:"author" validate:"required"`
	URL       string `json:"url" csv:"url"`
	Downs     uint64 `json:"downs" csv:"downs"`
	Ups       uint64 `json:"ups" csv:"ups"`
	Score     uint64 `json:"score" csv:"score"`
	Selftext  string `json:"selftext" csv:"selftext"`
	Subreddit string `json:"subreddit" csv:"subreddit"`
	Title     string `json:"title" csv:"title"`
}

// Validate checks that the required fields of every post are present.
// The index of the first offending post is reported. Subreddit is optional
// here: unlabeled posts can be classified, and labels are only checked when
// a training batch is encoded.
func Validate(posts []RawPost) error {
	for i := range posts {
		if err := validate.Struct(&posts[i]); err != nil {
			return fmt.Errorf("%w: post %d: %v", ErrMalformedPost, i, err)
		}
	}
	return nil
}
