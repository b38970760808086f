// Package config loads tool configuration with viper. Scoring weights live
// here rather than as literals in the scorer so a team can tune them through
// a config file or TEAMSTATS_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Scoring holds the weights of the contribution score formula.
type Scoring struct {
	Commit            float64 `mapstructure:"commit"`
	PullRequest       float64 `mapstructure:"pull_request"`
	Approve           float64 `mapstructure:"approve"`
	ChangesRequested  float64 `mapstructure:"changes_requested"`
	Commented         float64 `mapstructure:"commented"`
	InlineComment     float64 `mapstructure:"inline_comment"`
	DiscussionComment float64 `mapstructure:"discussion_comment"`
	EngagementBonus   float64 `mapstructure:"engagement_bonus"`

	// PR size multiplier thresholds (additions + deletions).
	MediumPRChanges    int     `mapstructure:"medium_pr_changes"`
	LargePRChanges     int     `mapstructure:"large_pr_changes"`
	MediumPRMultiplier float64 `mapstructure:"medium_pr_multiplier"`
	LargePRMultiplier  float64 `mapstructure:"large_pr_multiplier"`

	// Per-PR engagement score components.
	EngagementDiscussion float64 `mapstructure:"engagement_discussion"`
	EngagementInline     float64 `mapstructure:"engagement_inline"`
	EngagementReview     float64 `mapstructure:"engagement_review"`
}

// Config is the full tool configuration.
type Config struct {
	Scoring   Scoring `mapstructure:"scoring"`
	CacheDir  string  `mapstructure:"cache_dir"`
	ChunkSize int     `mapstructure:"chunk_size"`
}

// Load reads an optional teamstats.yaml from the working directory and
// applies TEAMSTATS_* environment overrides on top of the defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("scoring.commit", 2.0)
	v.SetDefault("scoring.pull_request", 5.0)
	v.SetDefault("scoring.approve", 3.0)
	v.SetDefault("scoring.changes_requested", 4.0)
	v.SetDefault("scoring.commented", 2.0)
	v.SetDefault("scoring.inline_comment", 2.0)
	v.SetDefault("scoring.discussion_comment", 1.5)
	v.SetDefault("scoring.engagement_bonus", 1.0)
	v.SetDefault("scoring.medium_pr_changes", 500)
	v.SetDefault("scoring.large_pr_changes", 1000)
	v.SetDefault("scoring.medium_pr_multiplier", 1.25)
	v.SetDefault("scoring.large_pr_multiplier", 1.5)
	v.SetDefault("scoring.engagement_discussion", 2.0)
	v.SetDefault("scoring.engagement_inline", 3.0)
	v.SetDefault("scoring.engagement_review", 2.0)
	v.SetDefault("cache_dir", ".github_cache")
	v.SetDefault("chunk_size", 50)

	v.SetEnvPrefix("TEAMSTATS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("teamstats")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
