package features

import (
	"strings"

	"github.com/samber/lo"
)

// ReferenceAuthors returns the authors of the posts made in subreddit, in
// batch order with repetitions, the way they are persisted for prediction.
func ReferenceAuthors(posts []RawPost, subreddit string) []string {
	return lo.FilterMap(posts, func(p RawPost, _ int) (string, bool) {
		return p.Author, strings.EqualFold(p.Subreddit, subreddit)
	})
}

// authorCounts counts how often each batch author that belongs to the
// reference set occurs in the batch.
func authorCounts(authors, reference []string) map[string]int {
	members := make(map[string]struct{}, len(reference))
	for _, a := range reference {
		members[a] = struct{}{}
	}
	counts := make(map[string]int)
	for _, a := range authors {
		if _, ok := members[a]; ok {
			counts[a]++
		}
	}
	return counts
}

// AuthorPopularity scores every author of the batch with the number of times
// it appears in the batch, counting only authors from the reference set.
// Authors outside the reference score 0.
func AuthorPopularity(authors, reference []string) []float32 {
	counts := authorCounts(authors, reference)
	out := make([]float32, len(authors))
	for i, a := range authors {
		out[i] = float32(counts[a])
	}
	return out
}
