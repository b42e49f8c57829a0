package rustsub

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/vectorizer"
)

// WordScore is a candidate interesting word and how strongly it separates
// the two subreddits.
type WordScore struct {
	Word  string
	Score float64
}

// RankWords scores every word that occurs in at least minDF posts by the
// absolute difference of its mean TF-IDF weight in r/rust and r/playrust
// posts. English stop words are ignored. The result is sorted by score,
// highest first.
func RankWords(posts []features.RawPost, minDF int) ([]WordScore, error) {
	labels := features.DefaultLabels()
	corpus := make([]string, len(posts))
	classes := make([]int, len(posts))
	var perClass [2]int
	for i, p := range posts {
		l, err := labels.Encode(p.Subreddit)
		if err != nil {
			return nil, fmt.Errorf("rustsub: post %d: %w", i, err)
		}
		corpus[i] = features.WordText(p)
		classes[i] = int(l)
		perClass[classes[i]]++
	}
	if perClass[0] == 0 || perClass[1] == 0 {
		return nil, fmt.Errorf("%w: need posts from both subreddits, got %d and %d", ErrTooFewPosts, perClass[0], perClass[1])
	}

	tv := vectorizer.NewTfidfVectorizer(max(minDF, 1), vectorizer.EnglishStopWords())
	vecs := tv.FitTransform(corpus)

	terms := tv.Terms()
	var sums [2][]float64
	sums[0] = make([]float64, len(terms))
	sums[1] = make([]float64, len(terms))
	for i, sv := range vecs {
		for j, idx := range sv.Indices {
			sums[classes[i]][idx] += sv.Values[j]
		}
	}

	scores := make([]WordScore, len(terms))
	for i, t := range terms {
		diff := sums[0][i]/float64(perClass[0]) - sums[1][i]/float64(perClass[1])
		scores[i] = WordScore{Word: t, Score: math.Abs(diff)}
	}
	slices.SortFunc(scores, func(a, b WordScore) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Word, b.Word)
	})
	return scores, nil
}

// MineVocabulary returns the size best separating words, sorted alphabetically.
// size must be positive.
func MineVocabulary(posts []features.RawPost, size, minDF int) ([]string, error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size %d", features.ErrInvalidVocabulary, size)
	}
	scores, err := RankWords(posts, minDF)
	if err != nil {
		return nil, err
	}
	scores = scores[:min(size, len(scores))]
	words := make([]string, len(scores))
	for i, s := range scores {
		words[i] = s.Word
	}
	slices.Sort(words)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: no word occurs in %d posts", ErrTooFewPosts, minDF)
	}
	return words, nil
}
