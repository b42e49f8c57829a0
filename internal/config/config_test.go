package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	require.Equal(t, 8, cfg.Features.MinSelftextLen)
	require.Equal(t, 0.6, cfg.Features.Threshold)
	require.Equal(t, "@every 15m", cfg.Watch.Schedule)
	require.Equal(t, filepath.Join("data", "posts.csv"), cfg.Storage().Path(cfg.Data.Posts))
}

func TestLoadTOML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "rustsub.toml", `
[data]
dir = "/var/lib/rustsub"

[features]
threshold = 0.7

[forest]
trees = 10
max_depth = 4

[reddit]
timeout = "30s"
subreddits = ["rust"]
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "/var/lib/rustsub", cfg.Data.Dir)
	require.Equal(t, 0.7, cfg.Features.Threshold)
	require.Equal(t, 10, cfg.Forest.Trees)
	require.Equal(t, 4, cfg.LearnerConfig().MaxDepth)
	require.Equal(t, 30*time.Second, cfg.Reddit.Timeout)
	require.Equal(t, []string{"rust"}, cfg.Reddit.Subreddits)
	// Untouched sections keep their defaults.
	require.Equal(t, ":8080", cfg.Server.Addr)
	require.Equal(t, 8, cfg.Features.MinSelftextLen)
}

func TestLoadYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "rustsub.yaml", `
server:
  addr: ":9090"
  mode: debug
watch:
  schedule: "*/5 * * * *"
  limit: 50
evaluate:
  group_by: domain
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Server.Addr)
	require.Equal(t, "debug", cfg.Server.Mode)
	require.Equal(t, "*/5 * * * *", cfg.Watch.Schedule)
	require.Equal(t, 50, cfg.Watch.Limit)
	require.Equal(t, "domain", cfg.Evaluate.GroupBy)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	path := writeFile(t, ".", "rustsub.toml", "[forest]\ntrees = 10\n")
	t.Setenv("RUSTSUB_FOREST_TREES", "3")
	t.Setenv("RUSTSUB_FEATURES_MIN_SELFTEXT_LEN", "0")
	t.Setenv("RUSTSUB_REDDIT_SUBREDDITS", "rust,playrust,golang")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Forest.Trees)
	require.Equal(t, 0, cfg.Features.MinSelftextLen)
	require.Equal(t, []string{"rust", "playrust", "golang"}, cfg.Reddit.Subreddits)
}

func TestLoadDotEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	writeFile(t, ".", ".env", "RUSTSUB_ANONYMIZE_KEY=hunter2\n")
	t.Cleanup(func() { os.Unsetenv("RUSTSUB_ANONYMIZE_KEY") })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "hunter2", cfg.Anonymize.Key)
}

func TestLoadErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(writeFile(t, ".", "rustsub.ini", "x=1"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, ".", "unknown.toml", "[forest]\nleaves = 3\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, ".", "unknown.yaml", "forest:\n  leaves: 3\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, ".", "threshold.toml", "[features]\nthreshold = 1.5\n"))
	require.Error(t, err)

	_, err = Load(writeFile(t, ".", "group.yaml", "evaluate:\n  group_by: subreddit\n"))
	require.Error(t, err)

	_, err = Load("missing.toml")
	require.Error(t, err)
}
