package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub/internal/watch"
)

func (c *CLI) newWatchCommand() *cobra.Command {
	var modelPath, schedule, subreddit string
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Periodically report new posts that look like they belong to the other subreddit",
		Example: `  rustsub watch
  rustsub watch --subreddit rust --schedule "@every 5m" --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.loadModel(modelPath)
			if err != nil {
				return err
			}
			wc := c.cfg.Watch
			if schedule == "" {
				schedule = wc.Schedule
			}
			if subreddit == "" {
				subreddit = wc.Subreddit
			}
			if !cmd.Flags().Changed("limit") {
				limit = wc.Limit
			}

			w := watch.New(c.redditClient(), cl, subreddit, limit)
			if _, err := w.Check(cmd.Context()); err != nil {
				slog.Warn("Initial check failed", "error", err)
			}
			if err := w.Start(schedule); err != nil {
				return err
			}
			<-cmd.Context().Done()
			slog.Info("Stopping watcher")
			w.Stop()
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: data/model.json)")
	cmd.Flags().StringVar(&schedule, "schedule", "", `Cron schedule (default: from config, "@every 15m")`)
	cmd.Flags().StringVar(&subreddit, "subreddit", "", "Subreddit to watch (default: from config, rust)")
	cmd.Flags().IntVar(&limit, "limit", 25, "Posts fetched per check")
	return cmd
}
