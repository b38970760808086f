package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/flyt-tools/teamstats/internal/config"
	"github.com/flyt-tools/teamstats/internal/domain"
)

// testWeights mirrors the shipped defaults in internal/config.
func testWeights() config.Scoring {
	return config.Scoring{
		Commit:               2.0,
		PullRequest:          5.0,
		Approve:              3.0,
		ChangesRequested:     4.0,
		Commented:            2.0,
		InlineComment:        2.0,
		DiscussionComment:    1.5,
		EngagementBonus:      1.0,
		MediumPRChanges:      500,
		LargePRChanges:       1000,
		MediumPRMultiplier:   1.25,
		LargePRMultiplier:    1.5,
		EngagementDiscussion: 2.0,
		EngagementInline:     3.0,
		EngagementReview:     2.0,
	}
}

func TestScore_KnownValue(t *testing.T) {
	stats := domain.MemberStats{
		CommitCount:             3,
		ReviewsApproved:         2,
		ReviewsChangesRequested: 1,
		ReviewsCommented:        1,
		ReviewComments:          4,
		PRComments:              2,
		AvgPREngagement:         5,
	}
	createdPRs := []domain.PullRequest{
		{Number: 1, Additions: 800, Deletions: 300}, // large: 1.5x
		{Number: 2},                                 // standard: 1.0x
	}

	// commits 3*2 + PRs (5*1.5 + 5*1.0) + reviews (2*3 + 1*4 + 1*2)
	// + comments (4*2 + 2*1.5) + engagement 5*1.0
	expected := 6.0 + 12.5 + 12.0 + 11.0 + 5.0
	assert.InDelta(t, expected, Score(stats, createdPRs, testWeights()), 1e-9)
}

func TestScore_Deterministic(t *testing.T) {
	stats := domain.MemberStats{CommitCount: 7, ReviewsApproved: 3, PRComments: 9, AvgPREngagement: 2.5}
	prs := []domain.PullRequest{{Number: 4, Additions: 600}}

	first := Score(stats, prs, testWeights())
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(stats, prs, testWeights()))
	}
}

func TestScore_ZeroActivity(t *testing.T) {
	assert.Zero(t, Score(domain.MemberStats{Username: "lurker"}, nil, testWeights()))
}

func TestComplexityMultiplier(t *testing.T) {
	w := testWeights()
	testCases := []struct {
		name      string
		additions int
		deletions int
		expected  float64
	}{
		{name: "standard PR", additions: 100, deletions: 50, expected: 1.0},
		{name: "medium PR", additions: 400, deletions: 200, expected: 1.25},
		{name: "large PR", additions: 900, deletions: 200, expected: 1.5},
		{name: "boundary stays standard", additions: 500, deletions: 0, expected: 1.0},
		{name: "list response without counters", expected: 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pr := domain.PullRequest{Additions: tc.additions, Deletions: tc.deletions}
			assert.Equal(t, tc.expected, complexityMultiplier(pr, w))
		})
	}
}

func TestEngagementScore(t *testing.T) {
	detail := domain.PullRequestDetail{
		Reviews:        []domain.Review{{State: domain.ReviewApproved}, {State: domain.ReviewCommented}},
		ReviewComments: []domain.Comment{{}, {}, {}},
		Comments:       []domain.Comment{{}},
	}
	// 1 discussion*2 + 3 inline*3 + 2 reviews*2
	assert.InDelta(t, 15.0, engagementScore(detail, testWeights()), 1e-9)
}
