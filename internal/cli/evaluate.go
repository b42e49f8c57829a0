package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
)

func (c *CLI) newEvaluateCommand() *cobra.Command {
	var src postSource
	var vocabPath, groupBy string
	var cvFolds int
	var holdout bool

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Evaluate model accuracy via grouped cross-validation",
		Example: `  rustsub evaluate --cv 10
  rustsub evaluate --group-by domain
  rustsub evaluate --holdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			posts, err := src.load(cmd.Context(), c)
			if err != nil {
				return err
			}
			vocabulary, err := c.loadVocabulary(vocabPath)
			if err != nil {
				return err
			}

			start := time.Now()
			if holdout {
				slog.Info("Evaluating on holdout", "posts", len(posts))
				res, err := rustsub.Holdout(posts, vocabulary, c.trainConfig())
				if err != nil {
					return err
				}
				slog.Debug("Evaluation completed", "duration", time.Since(start))
				fmt.Printf("Holdout accuracy: %.1f%% (%d hits, %d misses; trained on %d posts)\n",
					res.Accuracy()*100, res.Hits, res.Misses, res.Train)
				return nil
			}

			if !cmd.Flags().Changed("cv") {
				cvFolds = c.cfg.Evaluate.Folds
			}
			if !cmd.Flags().Changed("group-by") {
				groupBy = c.cfg.Evaluate.GroupBy
			}
			slog.Info("Evaluating", "folds", cvFolds, "group-by", groupBy, "posts", len(posts))
			result, err := rustsub.Evaluate(posts, vocabulary, &rustsub.EvalConfig{
				Folds:   cvFolds,
				GroupBy: groupBy,
				Train:   *c.trainConfig(),
			})
			if err != nil {
				return err
			}
			slog.Debug("Evaluation completed", "duration", time.Since(start))

			fmt.Printf("Accuracy: %.1f%% (%d/%d posts, %d folds)\n",
				result.Accuracy*100, result.Correct, result.Total, result.Folds)
			printConfusionMatrix(result.Confusion, features.DefaultLabels().Classes)
			return nil
		},
	}

	src.addFlags(cmd)
	cmd.Flags().StringVar(&vocabPath, "vocabulary", "", "Interesting words list (default: data/words_of_interest)")
	cmd.Flags().IntVar(&cvFolds, "cv", 5, "Number of cross-validation folds")
	cmd.Flags().StringVar(&groupBy, "group-by", rustsub.GroupByAuthor, "Keep posts with the same author or domain in one fold")
	cmd.Flags().BoolVar(&holdout, "holdout", false, "Train on 8/9 of the posts and test on the rest")
	return cmd
}

func printConfusionMatrix(confusion [2][2]int, classes []string) {
	fmt.Printf("\nConfusion matrix (rows=true, cols=predicted):\n")
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(append(append([]string{""}, classes...), "total", "acc%"))
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for i, row := range confusion {
		total := row[0] + row[1]
		acc := 0.0
		if total > 0 {
			acc = float64(row[i]) / float64(total) * 100
		}
		table.Append([]string{
			classes[i],
			strconv.Itoa(row[0]),
			strconv.Itoa(row[1]),
			strconv.Itoa(total),
			fmt.Sprintf("%.1f", acc),
		})
	}
	table.Render()
}
