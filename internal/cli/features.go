package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

func (c *CLI) newFeaturesCommand() *cobra.Command {
	var src postSource
	var vocabPath, outDir string
	var header bool

	cmd := &cobra.Command{
		Use:   "features",
		Short: "Write the feature matrix and labels of the training posts as CSV",
		Long: `Builds the training matrix exactly as 'train' does and writes it to the
"features" file, one row per post, with the labels (0 = rust, 1 = playrust)
in the "truth" file. The reference author list is written alongside.`,
		Example: `  rustsub features
  rustsub features --out matrices --header`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := src.load(cmd.Context(), c)
			if err != nil {
				return err
			}
			vocabulary, err := c.loadVocabulary(vocabPath)
			if err != nil {
				return err
			}
			ds, err := rustsub.BuildDataset(posts, vocabulary, c.trainConfig())
			if err != nil {
				return err
			}

			st := c.cfg.Storage()
			if outDir != "" {
				st = storage.NewStorage(outDir)
			}
			if err := ensureDir(st.Folder); err != nil {
				return err
			}

			var names []string
			if header {
				names = ds.Names
			}
			featuresPath := st.Path(storage.FeaturesFile)
			if err := writeFile(featuresPath, func(w *bufio.Writer) error {
				return storage.WriteMatrixCSV(w, ds.X, names)
			}); err != nil {
				return err
			}
			truthPath := st.Path(storage.TruthFile)
			if err := writeFile(truthPath, func(w *bufio.Writer) error {
				return storage.WriteVectorCSV(w, ds.Y)
			}); err != nil {
				return err
			}
			if err := storage.SaveList(st.Path(c.cfg.Data.Authors), ds.Authors); err != nil {
				return err
			}

			rows, cols := ds.X.Dims()
			slog.Info("Features written", "rows", rows, "columns", cols, "features", featuresPath, "truth", truthPath)
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVar(&vocabPath, "vocabulary", "", "Interesting words list (default: data/words_of_interest)")
	cmd.Flags().StringVar(&outDir, "out", "", "Output folder (default: the data folder)")
	cmd.Flags().BoolVar(&header, "header", false, "Write column names as the first row")
	return cmd
}

func writeFile(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
