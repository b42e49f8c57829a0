package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

func (c *CLI) newAnonymizeCommand() *cobra.Command {
	var outPath string
	var iterations uint64

	cmd := &cobra.Command{
		Use:   "anonymize <posts.csv>",
		Short: "Replace the author names of a posts CSV with keyed digests",
		Long: `Every author name is replaced by a keyed, iterated SHA3-512 digest, so the
same author keeps the same pseudonym across files anonymized with the same
key. The key is read from RUSTSUB_ANONYMIZE_KEY.`,
		Args: cobra.ExactArgs(1),
		Example: `  RUSTSUB_ANONYMIZE_KEY=secret rustsub anonymize posts.csv --out posts.anon.csv
  rustsub anonymize posts.csv --iterations 5000 > posts.anon.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := c.cfg.Anonymize.Key
			if key == "" {
				return errors.New("no anonymization key, set RUSTSUB_ANONYMIZE_KEY")
			}
			if !cmd.Flags().Changed("iterations") {
				iterations = c.cfg.Anonymize.Iterations
			}

			posts, err := storage.LoadPostsCSV(args[0])
			if err != nil {
				return err
			}
			anonymizePosts(posts, iterations, []byte(key))

			if outPath == "" {
				if err := storage.WritePostsCSV(os.Stdout, posts); err != nil {
					return err
				}
			} else if err := writePostsFile(outPath, posts); err != nil {
				return err
			}
			slog.Info("Posts anonymized", "posts", len(posts), "iterations", iterations)
			return nil
		},
	}

	cmd.Flags().StringVar(&outPath, "out", "", "Output CSV file (default: stdout)")
	cmd.Flags().Uint64Var(&iterations, "iterations", 1000, "Digest iterations")
	return cmd
}

func writePostsFile(path string, posts []features.RawPost) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := storage.WritePostsCSV(f, posts); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
