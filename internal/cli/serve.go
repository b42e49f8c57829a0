package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/happyhackingspace/rustsub/internal/server"
)

func (c *CLI) newServeCommand() *cobra.Command {
	var modelPath, addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve predictions over HTTP",
		Long: `Starts an HTTP server with the endpoints:

  GET  /healthz   liveness check
  GET  /model     model summary
  POST /predict   JSON array of posts in, JSON array of predictions out`,
		Example: `  rustsub serve --addr :8080
  curl -d '[{"author":"ferris","subreddit":"rust","title":"Lifetimes","selftext":"fn main() {}","is_self":true}]' localhost:8080/predict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cl, err := c.loadModel(modelPath)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = c.cfg.Server.Addr
			}
			slog.Info("Serving model", "id", cl.ID, "posts", cl.Posts)
			return server.New(cl, c.cfg.Server.Mode).ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "Path to model file (default: data/model.json)")
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: from config, :8080)")
	return cmd
}
