package features

import (
	"slices"
	"strings"
)

// Dedup sorts posts by title and keeps the first post of every group of
// equal titles. Posts with the same title are considered the same post.
// The input slice is not modified.
func Dedup(posts []RawPost) []RawPost {
	sorted := slices.Clone(posts)
	slices.SortStableFunc(sorted, func(a, b RawPost) int {
		return strings.Compare(a.Title, b.Title)
	})
	return slices.CompactFunc(sorted, func(a, b RawPost) bool {
		return a.Title == b.Title
	})
}
