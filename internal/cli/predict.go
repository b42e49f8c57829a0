package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub"
	"github.com/happyhackingspace/rustsub/features"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

const maxTitleWidth = 60

func (c *CLI) newPredictCommand() *cobra.Command {
	var modelPath string
	var urls []string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "predict [posts.csv]",
		Short: "Predict the subreddit of posts from a CSV file or Reddit permalinks",
		Args:  cobra.MaximumNArgs(1),
		Example: `  # Classify every post of a CSV file
  rustsub predict new_posts.csv

  # Classify posts straight from Reddit
  rustsub predict --url /r/rust/comments/abc123/ --url https://www.reddit.com/r/playrust/comments/def456/

  # Print JSON instead of a table
  rustsub predict new_posts.csv --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var posts []features.RawPost
			if len(args) == 1 {
				loaded, err := storage.LoadPostsCSV(args[0])
				if err != nil {
					return err
				}
				posts = loaded
			}
			if len(urls) > 0 {
				client := c.redditClient()
				for _, u := range urls {
					slog.Debug("Fetching post", "url", u)
					p, err := client.Post(cmd.Context(), u)
					if err != nil {
						return err
					}
					posts = append(posts, p)
				}
			}
			if len(posts) == 0 {
				return cmd.Help()
			}

			cl, err := c.loadModel(modelPath)
			if err != nil {
				return err
			}
			start := time.Now()
			preds, err := cl.Predict(posts)
			if err != nil {
				return err
			}
			slog.Debug("Prediction completed", "posts", len(posts), "duration", time.Since(start))

			if asJSON {
				output, _ := json.MarshalIndent(preds, "", "  ")
				fmt.Println(string(output))
				return nil
			}
			printPredictions(preds, posts)
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: data/model.json)")
	cmd.Flags().StringArrayVar(&urls, "url", nil, "Reddit post permalink (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print predictions as JSON")
	return cmd
}

func printPredictions(preds []rustsub.Prediction, posts []features.RawPost) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Title", "Author", "Score", "Predicted", "Posted in"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for i, p := range preds {
		table.Append([]string{
			truncate(p.Title, maxTitleWidth),
			p.Author,
			fmt.Sprintf("%.3f", p.Score),
			p.Subreddit,
			posts[i].Subreddit,
		})
	}
	table.Render()
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
