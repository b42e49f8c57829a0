package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

func (c *CLI) newVocabCommand() *cobra.Command {
	var src postSource
	var outPath string
	var size, minDF int
	var show bool

	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Mine the interesting-word vocabulary from collected posts",
		Long: `Ranks every word by how differently it is used in r/rust and r/playrust
posts (mean TF-IDF weight per subreddit) and writes the best ones, one per
line, to the words_of_interest list used by 'train'.`,
		Example: `  rustsub vocab
  rustsub vocab --size 100 --min-df 5
  rustsub vocab --show`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := src.load(cmd.Context(), c)
			if err != nil {
				return err
			}
			posts = features.Dedup(posts)
			if !cmd.Flags().Changed("size") {
				size = c.cfg.Features.VocabularySize
			}
			if !cmd.Flags().Changed("min-df") {
				minDF = c.cfg.Features.MinDF
			}
			if size < 1 {
				return fmt.Errorf("--size must be positive, got %d", size)
			}

			if show {
				scores, err := rustsub.RankWords(posts, minDF)
				if err != nil {
					return err
				}
				for _, s := range scores[:min(size, len(scores))] {
					fmt.Printf("%-10s %.4f\n", s.Word, s.Score)
				}
				return nil
			}

			words, err := rustsub.MineVocabulary(posts, size, minDF)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = c.cfg.Storage().Path(c.cfg.Data.Vocabulary)
			}
			if err := storage.SaveList(outPath, words); err != nil {
				return err
			}
			slog.Info("Vocabulary saved", "path", outPath, "words", len(words), "posts", len(posts))
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVar(&outPath, "out", "", "Output list (default: data/words_of_interest)")
	cmd.Flags().IntVar(&size, "size", 300, "Number of words to keep")
	cmd.Flags().IntVar(&minDF, "min-df", 3, "Ignore words found in fewer posts")
	cmd.Flags().BoolVar(&show, "show", false, "Print the ranking instead of saving it")
	return cmd
}
