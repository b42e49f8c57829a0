package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/anonymize"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

func (c *CLI) newCollectCommand() *cobra.Command {
	var subreddits []string
	var outPath string
	var maxPosts int
	var toDB, noCSV, anon bool

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Download the newest posts of r/rust and r/playrust",
		Example: `  rustsub collect --max 1000
  rustsub collect --db --no-csv
  rustsub collect --subreddit rust --out rust.csv --anonymize`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if noCSV && !toDB {
				return errors.New("nothing to write: --no-csv needs --db")
			}
			if len(subreddits) == 0 {
				subreddits = c.cfg.Reddit.Subreddits
			}
			var key []byte
			if anon {
				if c.cfg.Anonymize.Key == "" {
					return errors.New("--anonymize needs RUSTSUB_ANONYMIZE_KEY")
				}
				key = []byte(c.cfg.Anonymize.Key)
			}

			st := c.cfg.Storage()
			var sinks []func([]features.RawPost) error
			var csvFile *os.File

			if !noCSV {
				if outPath == "" {
					outPath = st.Path(c.cfg.Data.Posts)
				}
				if err := ensureDir(filepath.Dir(outPath)); err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				csvFile = f
				defer func() {
					if csvFile != nil {
						_ = csvFile.Close()
					}
				}()
				sinks = append(sinks, storage.NewPostWriter(f).Write)
			}
			if toDB {
				if err := ensureDir(st.Folder); err != nil {
					return err
				}
				store, err := storage.OpenPostStore(cmd.Context(), st.Path(c.cfg.Data.Database))
				if err != nil {
					return err
				}
				defer func() { _ = store.Close() }()
				sinks = append(sinks, func(posts []features.RawPost) error {
					return store.Upsert(cmd.Context(), posts)
				})
			}

			client := c.redditClient()
			for _, sub := range subreddits {
				slog.Info("Collecting", "subreddit", sub, "max", maxPosts)
				n, err := client.Collect(cmd.Context(), sub, c.cfg.Reddit.PageSize, maxPosts, func(posts []features.RawPost) error {
					if key != nil {
						anonymizePosts(posts, c.cfg.Anonymize.Iterations, key)
					}
					for _, sink := range sinks {
						if err := sink(posts); err != nil {
							return err
						}
					}
					return nil
				})
				if err != nil {
					return fmt.Errorf("collect r/%s: %w", sub, err)
				}
				slog.Info("Collected", "subreddit", sub, "posts", n)
			}
			if csvFile != nil {
				f := csvFile
				csvFile = nil
				if err := f.Close(); err != nil {
					return fmt.Errorf("close %s: %w", outPath, err)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&subreddits, "subreddit", nil, "Subreddit to collect (repeatable, default: from config)")
	cmd.Flags().StringVar(&outPath, "out", "", "Output CSV file (default: data/posts.csv)")
	cmd.Flags().IntVar(&maxPosts, "max", 1000, "Maximum posts per subreddit (0 = until the listing ends)")
	cmd.Flags().BoolVar(&toDB, "db", false, "Also store posts in the SQLite database")
	cmd.Flags().BoolVar(&noCSV, "no-csv", false, "Do not write the CSV file")
	cmd.Flags().BoolVar(&anon, "anonymize", false, "Replace author names with keyed digests")
	return cmd
}

func anonymizePosts(posts []features.RawPost, iterations uint64, key []byte) {
	names := make([]string, len(posts))
	for i, p := range posts {
		names[i] = p.Author
	}
	for i, a := range anonymize.Authors(names, iterations, key) {
		posts[i].Author = a
	}
}
