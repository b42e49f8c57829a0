package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/reddit"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

// postSource selects where a command reads its training posts from.
type postSource struct {
	posts string
	db    bool
}

func (s *postSource) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.posts, "posts", "", "Posts CSV file (default: data/posts.csv)")
	cmd.Flags().BoolVar(&s.db, "db", false, "Read posts from the SQLite database instead of the CSV file")
}

// load reads the posts of the configured subreddits.
func (s *postSource) load(ctx context.Context, c *CLI) ([]features.RawPost, error) {
	st := c.cfg.Storage()
	if s.db {
		path := st.Path(c.cfg.Data.Database)
		store, err := storage.OpenPostStore(ctx, path)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		posts, err := store.Posts(ctx, c.cfg.Reddit.Subreddits...)
		if err != nil {
			return nil, err
		}
		slog.Info("Posts loaded", "db", path, "posts", len(posts))
		return posts, nil
	}

	path := s.posts
	if path == "" {
		path = st.Path(c.cfg.Data.Posts)
	}
	posts, err := storage.LoadPostsCSV(path)
	if err != nil {
		return nil, err
	}
	slog.Info("Posts loaded", "path", path, "posts", len(posts))
	return posts, nil
}

func (c *CLI) loadVocabulary(path string) ([]string, error) {
	if path == "" {
		path = c.cfg.Storage().Path(c.cfg.Data.Vocabulary)
	}
	words, err := storage.LoadList(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("vocabulary %s is empty, run 'rustsub vocab' first", path)
	}
	slog.Debug("Vocabulary loaded", "path", path, "words", len(words))
	return words, nil
}

func (c *CLI) loadModel(path string) (*rustsub.Classifier, error) {
	if path == "" {
		path = c.cfg.Storage().Path(c.cfg.Data.Model)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("model %s not found, run 'rustsub train' first: %w", path, err)
	}
	cl, err := rustsub.Load(path)
	if err != nil {
		return nil, err
	}
	slog.Debug("Model loaded", "path", path, "id", cl.ID, "columns", cl.Layout.Columns())
	return cl, nil
}

func (c *CLI) trainConfig() *rustsub.TrainConfig {
	f := c.cfg.Features
	return &rustsub.TrainConfig{
		MinSelftextLen: f.MinSelftextLen,
		ShuffleSeed:    f.ShuffleSeed,
		Threshold:      f.Threshold,
		Workers:        f.Workers,
		Forest:         c.cfg.LearnerConfig(),
	}
}

func (c *CLI) redditClient() *reddit.Client {
	r := c.cfg.Reddit
	return reddit.NewClient(
		reddit.WithBaseURL(r.BaseURL),
		reddit.WithUserAgent(r.UserAgent),
		reddit.WithTimeout(r.Timeout),
		reddit.WithPageDelay(r.PageDelay),
	)
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	return nil
}
