package rustsub

import (
	"fmt"
	"log/slog"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

// Grouping keys for cross-validation folds.
const (
	GroupByAuthor = "author"
	GroupByDomain = "domain"
)

// EvalConfig holds configuration for evaluation.
type EvalConfig struct {
	Folds   int
	GroupBy string
	Train   TrainConfig
}

// EvalResult holds cross-validation evaluation results.
type EvalResult struct {
	Accuracy float64
	Correct  int
	Total    int
	Folds    int
	// Confusion[truth][predicted], indexed by label.
	Confusion [2][2]int
}

// Evaluate runs grouped k-fold cross-validation. Posts sharing a group key
// (author or link domain) never appear in both the training and the test
// part of a fold; reference authors are taken from the training part only.
func Evaluate(posts []features.RawPost, vocabulary []string, config *EvalConfig) (*EvalResult, error) {
	cfg := EvalConfig{Folds: 5, GroupBy: GroupByAuthor, Train: DefaultTrainConfig()}
	if config != nil {
		cfg = *config
		if cfg.Folds < 2 {
			cfg.Folds = 5
		}
	}

	prepared := Prepare(posts, cfg.Train.MinSelftextLen, cfg.Train.ShuffleSeed)
	if len(prepared) < 2 {
		return nil, fmt.Errorf("%w: %d posts after filtering", ErrTooFewPosts, len(prepared))
	}
	groups, err := postGroups(prepared, cfg.GroupBy)
	if err != nil {
		return nil, err
	}
	folds := groupKFold(groups, cfg.Folds)
	if len(folds) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 groups, got %d", ErrTooFewPosts, len(folds))
	}

	labels := features.DefaultLabels()
	result := &EvalResult{Folds: len(folds)}
	for f, testIdx := range folds {
		testSet := makeTestSet(len(prepared), testIdx)
		trainPosts, testPosts := splitByIndex(prepared, testSet)

		ds, err := buildDataset(trainPosts, vocabulary, cfg.Train.Workers)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}
		c, err := fit(ds, vocabulary, &cfg.Train)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}
		preds, err := c.Predict(testPosts)
		if err != nil {
			return nil, fmt.Errorf("fold %d: %w", f, err)
		}

		correct := 0
		for i, p := range preds {
			truth, err := labels.Encode(testPosts[i].Subreddit)
			if err != nil {
				return nil, fmt.Errorf("fold %d: %w", f, err)
			}
			pred, err := labels.Encode(p.Subreddit)
			if err != nil {
				return nil, fmt.Errorf("fold %d: %w", f, err)
			}
			result.Confusion[int(truth)][int(pred)]++
			if truth == pred {
				correct++
			}
		}
		result.Correct += correct
		result.Total += len(preds)
		slog.Debug("Fold evaluated", "fold", f, "train", len(trainPosts), "test", len(testPosts), "correct", correct)
	}
	if result.Total > 0 {
		result.Accuracy = float64(result.Correct) / float64(result.Total)
	}
	return result, nil
}

// postGroups assigns every post a group ID in order of first appearance.
func postGroups(posts []features.RawPost, groupBy string) ([]int, error) {
	var key func(features.RawPost) string
	switch groupBy {
	case "", GroupByAuthor:
		key = func(p features.RawPost) string { return p.Author }
	case GroupByDomain:
		key = func(p features.RawPost) string { return storage.GetDomain(p.URL) }
	default:
		return nil, fmt.Errorf("rustsub: unknown grouping %q", groupBy)
	}

	groups := make([]int, len(posts))
	ids := make(map[string]int)
	for i, p := range posts {
		k := key(p)
		if _, ok := ids[k]; !ok {
			ids[k] = len(ids)
		}
		groups[i] = ids[k]
	}
	return groups, nil
}

// groupKFold assigns group g to fold g mod nFolds. Group IDs must be dense
// from 0. Folds never share a group.
func groupKFold(groups []int, nFolds int) [][]int {
	nGroups := 0
	for _, g := range groups {
		nGroups = max(nGroups, g+1)
	}
	nFolds = min(nFolds, nGroups)

	folds := make([][]int, nFolds)
	for i, g := range groups {
		fold := g % nFolds
		folds[fold] = append(folds[fold], i)
	}
	return folds
}

func makeTestSet(n int, testIdx []int) []bool {
	set := make([]bool, n)
	for _, i := range testIdx {
		set[i] = true
	}
	return set
}

func splitByIndex(posts []features.RawPost, testSet []bool) (train, test []features.RawPost) {
	for i, p := range posts {
		if testSet[i] {
			test = append(test, p)
		} else {
			train = append(train, p)
		}
	}
	return train, test
}
