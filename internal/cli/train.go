package cli

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

func (c *CLI) newTrainCommand() *cobra.Command {
	var src postSource
	var vocabPath, modelPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a model on collected posts",
		Example: `  rustsub train
  rustsub train --posts posts.csv --model model.json
  rustsub train --db -v`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := src.load(cmd.Context(), c)
			if err != nil {
				return err
			}
			vocabulary, err := c.loadVocabulary(vocabPath)
			if err != nil {
				return err
			}

			st := c.cfg.Storage()
			if modelPath == "" {
				modelPath = st.Path(c.cfg.Data.Model)
			}
			slog.Info("Training classifier", "posts", len(posts), "vocabulary", len(vocabulary), "output", modelPath)
			start := time.Now()
			cl, err := rustsub.Train(posts, vocabulary, c.trainConfig())
			if err != nil {
				return err
			}
			slog.Debug("Training completed", "duration", time.Since(start))

			if err := ensureDir(filepath.Dir(modelPath)); err != nil {
				return err
			}
			if err := cl.Save(modelPath); err != nil {
				return err
			}
			authorsPath := st.Path(c.cfg.Data.Authors)
			if err := storage.SaveList(authorsPath, cl.Authors); err != nil {
				return err
			}
			slog.Info("Model saved", "path", modelPath, "id", cl.ID, "posts", cl.Posts, "authors", authorsPath)
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVar(&vocabPath, "vocabulary", "", "Interesting words list (default: data/words_of_interest)")
	cmd.Flags().StringVar(&modelPath, "model", "", "Output model file (default: data/model.json)")
	return cmd
}
