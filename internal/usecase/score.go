package usecase

import (
	"github.com/flyt-tools/teamstats/internal/config"
	"github.com/flyt-tools/teamstats/internal/domain"
)

// complexityMultiplier scales the PR-creation weight by the size of the
// change. List responses carry zero additions/deletions, which lands in the
// standard bucket.
func complexityMultiplier(pr domain.PullRequest, w config.Scoring) float64 {
	changes := pr.Additions + pr.Deletions
	switch {
	case changes > w.LargePRChanges:
		return w.LargePRMultiplier
	case changes > w.MediumPRChanges:
		return w.MediumPRMultiplier
	default:
		return 1.0
	}
}

// engagementScore measures how much activity one pull request attracted.
func engagementScore(d domain.PullRequestDetail, w config.Scoring) float64 {
	return w.EngagementDiscussion*float64(len(d.Comments)) +
		w.EngagementInline*float64(len(d.ReviewComments)) +
		w.EngagementReview*float64(len(d.Reviews))
}

// Score maps a member's aggregated activity to a weighted contribution
// number. Pure function: no hidden state, same inputs give the same score.
func Score(stats domain.MemberStats, createdPRs []domain.PullRequest, w config.Scoring) float64 {
	commitScore := float64(stats.CommitCount) * w.Commit

	prScore := 0.0
	for _, pr := range createdPRs {
		prScore += w.PullRequest * complexityMultiplier(pr, w)
	}

	reviewScore := float64(stats.ReviewsApproved)*w.Approve +
		float64(stats.ReviewsChangesRequested)*w.ChangesRequested +
		float64(stats.ReviewsCommented)*w.Commented

	commentScore := float64(stats.ReviewComments)*w.InlineComment +
		float64(stats.PRComments)*w.DiscussionComment

	engagementBonus := w.EngagementBonus * stats.AvgPREngagement

	return commitScore + prScore + reviewScore + commentScore + engagementBonus
}
