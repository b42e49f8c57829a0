// Package config loads rustsub settings from a TOML or YAML file, a .env
// file and RUSTSUB_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/happyhackingspace/rustsub/forest"
	"github.com/happyhackingspace/rustsub/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. RUSTSUB_SERVER_ADDR.
const EnvPrefix = "RUSTSUB"

var ErrUnsupportedFormat = errors.New("config: unsupported file format")

var validate = validator.New()

// Config holds all application configuration.
type Config struct {
	Data      DataConfig      `toml:"data" yaml:"data" envconfig:"data"`
	Features  FeaturesConfig  `toml:"features" yaml:"features" envconfig:"features"`
	Forest    ForestConfig    `toml:"forest" yaml:"forest" envconfig:"forest"`
	Evaluate  EvaluateConfig  `toml:"evaluate" yaml:"evaluate" envconfig:"evaluate"`
	Reddit    RedditConfig    `toml:"reddit" yaml:"reddit" envconfig:"reddit"`
	Server    ServerConfig    `toml:"server" yaml:"server" envconfig:"server"`
	Watch     WatchConfig     `toml:"watch" yaml:"watch" envconfig:"watch"`
	Anonymize AnonymizeConfig `toml:"anonymize" yaml:"anonymize" envconfig:"anonymize"`
}

// DataConfig names the data files. Relative names are resolved inside Dir.
type DataConfig struct {
	Dir        string `toml:"dir" yaml:"dir" envconfig:"dir"`
	Posts      string `toml:"posts" yaml:"posts" envconfig:"posts" validate:"required"`
	Vocabulary string `toml:"vocabulary" yaml:"vocabulary" envconfig:"vocabulary" validate:"required"`
	Authors    string `toml:"authors" yaml:"authors" envconfig:"authors" validate:"required"`
	Model      string `toml:"model" yaml:"model" envconfig:"model" validate:"required"`
	Database   string `toml:"database" yaml:"database" envconfig:"database" validate:"required"`
}

type FeaturesConfig struct {
	MinSelftextLen int     `toml:"min_selftext_len" yaml:"min_selftext_len" envconfig:"min_selftext_len" validate:"gte=0"`
	Workers        int     `toml:"workers" yaml:"workers" envconfig:"workers" validate:"gte=0"`
	Threshold      float64 `toml:"threshold" yaml:"threshold" envconfig:"threshold" validate:"gte=0,lte=1"`
	ShuffleSeed    uint64  `toml:"shuffle_seed" yaml:"shuffle_seed" envconfig:"shuffle_seed"`
	VocabularySize int     `toml:"vocabulary_size" yaml:"vocabulary_size" envconfig:"vocabulary_size" validate:"gte=1"`
	MinDF          int     `toml:"min_df" yaml:"min_df" envconfig:"min_df" validate:"gte=1"`
}

type ForestConfig struct {
	Trees           int    `toml:"trees" yaml:"trees" envconfig:"trees" validate:"gte=1"`
	MaxDepth        int    `toml:"max_depth" yaml:"max_depth" envconfig:"max_depth" validate:"gte=0"`
	MinSamplesSplit int    `toml:"min_samples_split" yaml:"min_samples_split" envconfig:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf  int    `toml:"min_samples_leaf" yaml:"min_samples_leaf" envconfig:"min_samples_leaf" validate:"gte=1"`
	MaxFeatures     int    `toml:"max_features" yaml:"max_features" envconfig:"max_features" validate:"gte=0"`
	Bootstrap       bool   `toml:"bootstrap" yaml:"bootstrap" envconfig:"bootstrap"`
	Seed            uint64 `toml:"seed" yaml:"seed" envconfig:"seed"`
}

type EvaluateConfig struct {
	Folds   int    `toml:"folds" yaml:"folds" envconfig:"folds" validate:"gte=2"`
	GroupBy string `toml:"group_by" yaml:"group_by" envconfig:"group_by" validate:"oneof=author domain"`
}

type RedditConfig struct {
	BaseURL    string        `toml:"base_url" yaml:"base_url" envconfig:"base_url" validate:"required,url"`
	UserAgent  string        `toml:"user_agent" yaml:"user_agent" envconfig:"user_agent" validate:"required"`
	Timeout    time.Duration `toml:"timeout" yaml:"timeout" envconfig:"timeout" validate:"gt=0"`
	PageSize   int           `toml:"page_size" yaml:"page_size" envconfig:"page_size" validate:"gte=1,lte=100"`
	PageDelay  time.Duration `toml:"page_delay" yaml:"page_delay" envconfig:"page_delay" validate:"gte=0"`
	Subreddits []string      `toml:"subreddits" yaml:"subreddits" envconfig:"subreddits" validate:"required,min=1"`
}

type ServerConfig struct {
	Addr string `toml:"addr" yaml:"addr" envconfig:"addr" validate:"required"`
	Mode string `toml:"mode" yaml:"mode" envconfig:"mode" validate:"oneof=debug release test"`
}

type WatchConfig struct {
	Schedule  string `toml:"schedule" yaml:"schedule" envconfig:"schedule" validate:"required"`
	Subreddit string `toml:"subreddit" yaml:"subreddit" envconfig:"subreddit" validate:"required"`
	Limit     int    `toml:"limit" yaml:"limit" envconfig:"limit" validate:"gte=1,lte=100"`
}

// AnonymizeConfig holds the pseudonym key. Keep the key out of config files;
// set RUSTSUB_ANONYMIZE_KEY in the environment or in .env.
type AnonymizeConfig struct {
	Key        string `toml:"key" yaml:"key" envconfig:"key"`
	Iterations uint64 `toml:"iterations" yaml:"iterations" envconfig:"iterations"`
}

// Default returns a Config with the defaults used when nothing is configured.
func Default() *Config {
	fc := forest.DefaultConfig()
	return &Config{
		Data: DataConfig{
			Dir:        "data",
			Posts:      storage.PostsFile,
			Vocabulary: storage.VocabularyFile,
			Authors:    storage.AuthorsFile,
			Model:      storage.ModelFile,
			Database:   storage.DatabaseFile,
		},
		Features: FeaturesConfig{
			MinSelftextLen: 8,
			Threshold:      0.6,
			ShuffleSeed:    1,
			VocabularySize: 300,
			MinDF:          3,
		},
		Forest: ForestConfig{
			Trees:           fc.Trees,
			MaxDepth:        fc.MaxDepth,
			MinSamplesSplit: fc.MinSamplesSplit,
			MinSamplesLeaf:  fc.MinSamplesLeaf,
			MaxFeatures:     fc.MaxFeatures,
			Bootstrap:       fc.Bootstrap,
			Seed:            fc.Seed,
		},
		Evaluate: EvaluateConfig{
			Folds:   5,
			GroupBy: "author",
		},
		Reddit: RedditConfig{
			BaseURL:    "https://www.reddit.com",
			UserAgent:  "rustsub/dev (+https://github.com/happyhackingspace/rustsub)",
			Timeout:    15 * time.Second,
			PageSize:   100,
			PageDelay:  2 * time.Second,
			Subreddits: []string{"rust", "playrust"},
		},
		Server: ServerConfig{
			Addr: ":8080",
			Mode: "release",
		},
		Watch: WatchConfig{
			Schedule:  "@every 15m",
			Subreddit: "rust",
			Limit:     25,
		},
		Anonymize: AnonymizeConfig{
			Iterations: 1000,
		},
	}
}

// Load reads .env (if present), then the config file at path (if not empty),
// then RUSTSUB_* environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("config: environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decodeFile(path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.DecodeFile(path, c)
		if err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return fmt.Errorf("config: %s: unknown keys %v", path, undecoded)
		}
	case ".yaml", ".yml":
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		defer f.Close()
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(c); err != nil {
			return fmt.Errorf("config: %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
	return nil
}

// Validate rejects impossible settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Storage returns the data folder.
func (c *Config) Storage() *storage.Storage {
	return storage.NewStorage(c.Data.Dir)
}

// LearnerConfig converts the forest section for the learner.
func (c *Config) LearnerConfig() forest.Config {
	return forest.Config{
		Trees:           c.Forest.Trees,
		MaxDepth:        c.Forest.MaxDepth,
		MinSamplesSplit: c.Forest.MinSamplesSplit,
		MinSamplesLeaf:  c.Forest.MinSamplesLeaf,
		MaxFeatures:     c.Forest.MaxFeatures,
		Bootstrap:       c.Forest.Bootstrap,
		Seed:            c.Forest.Seed,
		Workers:         c.Features.Workers,
	}
}
