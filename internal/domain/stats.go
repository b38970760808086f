// Package domain contains the core data structures and domain logic for the application.
package domain

import "time"

// Review states as reported by the GitHub pull request reviews API.
const (
	ReviewApproved         = "APPROVED"
	ReviewChangesRequested = "CHANGES_REQUESTED"
	ReviewCommented        = "COMMENTED"
)

// User is the subset of a GitHub account we care about.
type User struct {
	Login string `json:"login"`
}

// PullRequest holds the fields of a pull request list item used by the report.
// The additions/deletions counters are zero on list responses; GitHub only
// populates them on the single-PR endpoint, which matches how the complexity
// multiplier treats missing values.
type PullRequest struct {
	Number    int        `json:"number"`
	State     string     `json:"state"`
	Title     string     `json:"title"`
	User      User       `json:"user"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at"`
	Additions int        `json:"additions"`
	Deletions int        `json:"deletions"`
}

// Review is a single pull request review submission.
type Review struct {
	User        User      `json:"user"`
	State       string    `json:"state"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Comment is a review comment (inline) or an issue comment (discussion);
// both carry the same fields we need.
type Comment struct {
	User      User      `json:"user"`
	CreatedAt time.Time `json:"created_at"`
}

// PullRequestDetail bundles a pull request with its per-PR activity,
// immutable for the duration of one report run.
type PullRequestDetail struct {
	PullRequest    PullRequest
	Reviews        []Review
	ReviewComments []Comment // inline comments on the diff
	Comments       []Comment // discussion comments on the PR itself
}

// OpenDuration reports how long the pull request was (or has been) open.
func (d PullRequestDetail) OpenDuration(now time.Time) time.Duration {
	end := now
	if d.PullRequest.ClosedAt != nil {
		end = *d.PullRequest.ClosedAt
	}
	return end.Sub(d.PullRequest.CreatedAt)
}

// MemberStats holds the aggregated activity of one team member over the
// analysis window. Invariants: TotalComments = ReviewComments + PRComments,
// and ReviewsGiven = ReviewsApproved + ReviewsChangesRequested +
// ReviewsCommented (other review states are not counted).
type MemberStats struct {
	Username                string  `json:"username"`
	CommitCount             int     `json:"commit_count"`
	PRCount                 int     `json:"pr_count"`
	ReviewsGiven            int     `json:"reviews_given"`
	ReviewsApproved         int     `json:"reviews_approved"`
	ReviewsChangesRequested int     `json:"reviews_changes_requested"`
	ReviewsCommented        int     `json:"reviews_commented"`
	ReviewComments          int     `json:"review_comments"`
	PRComments              int     `json:"pr_comments"`
	TotalComments           int     `json:"total_comments"`
	ContributionScore       float64 `json:"contribution_score"`
	AvgPRDurationHours      float64 `json:"avg_pr_duration_hours"`
	AvgPREngagement         float64 `json:"avg_pr_engagement"`
}
