package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2.0, cfg.Scoring.Commit)
	assert.Equal(t, 5.0, cfg.Scoring.PullRequest)
	assert.Equal(t, 3.0, cfg.Scoring.Approve)
	assert.Equal(t, 4.0, cfg.Scoring.ChangesRequested)
	assert.Equal(t, 2.0, cfg.Scoring.Commented)
	assert.Equal(t, 2.0, cfg.Scoring.InlineComment)
	assert.Equal(t, 1.5, cfg.Scoring.DiscussionComment)
	assert.Equal(t, 1.0, cfg.Scoring.EngagementBonus)
	assert.Equal(t, 500, cfg.Scoring.MediumPRChanges)
	assert.Equal(t, 1000, cfg.Scoring.LargePRChanges)
	assert.Equal(t, 1.25, cfg.Scoring.MediumPRMultiplier)
	assert.Equal(t, 1.5, cfg.Scoring.LargePRMultiplier)
	assert.Equal(t, 2.0, cfg.Scoring.EngagementDiscussion)
	assert.Equal(t, 3.0, cfg.Scoring.EngagementInline)
	assert.Equal(t, 2.0, cfg.Scoring.EngagementReview)
	assert.Equal(t, ".github_cache", cfg.CacheDir)
	assert.Equal(t, 50, cfg.ChunkSize)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TEAMSTATS_SCORING_COMMIT", "7.5")
	t.Setenv("TEAMSTATS_CHUNK_SIZE", "10")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 7.5, cfg.Scoring.Commit)
	assert.Equal(t, 10, cfg.ChunkSize)
}
