// Package output renders reports and status information to the terminal.
package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/flyt-tools/teamstats/internal/config"
	"github.com/flyt-tools/teamstats/internal/gateway"
	"github.com/flyt-tools/teamstats/internal/usecase"
)

// RenderReport prints the member table sorted by contribution score.
func RenderReport(report *usecase.Report) error {
	pterm.DefaultSection.Printf("Team Activity Report (last %d days)", report.Days)

	data := pterm.TableData{{
		"USERNAME", "COMMITS", "PRS", "REVIEWS", "APPROVED", "CHANGES REQ",
		"REV COMMENTED", "INLINE", "DISCUSSION", "TOTAL COMMENTS",
		"AVG PR HOURS", "AVG ENGAGEMENT", "SCORE",
	}}
	for _, m := range report.Members {
		data = append(data, []string{
			m.Username,
			strconv.Itoa(m.CommitCount),
			strconv.Itoa(m.PRCount),
			strconv.Itoa(m.ReviewsGiven),
			strconv.Itoa(m.ReviewsApproved),
			strconv.Itoa(m.ReviewsChangesRequested),
			strconv.Itoa(m.ReviewsCommented),
			strconv.Itoa(m.ReviewComments),
			strconv.Itoa(m.PRComments),
			strconv.Itoa(m.TotalComments),
			fmt.Sprintf("%.1f", m.AvgPRDurationHours),
			fmt.Sprintf("%.1f", m.AvgPREngagement),
			fmt.Sprintf("%.1f", m.ContributionScore),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return fmt.Errorf("failed to render report table: %w", err)
	}

	if len(report.IgnoredUsers) > 0 {
		pterm.Info.Printf("Ignored users: %s\n", strings.Join(report.IgnoredUsers, ", "))
	}
	if report.FailedPRFetches > 0 || report.FailedMembers > 0 {
		pterm.Warning.Printf("Excluded from the report: %d pull request(s), %d member(s) that failed to process\n",
			report.FailedPRFetches, report.FailedMembers)
	}
	return nil
}

// RenderSummary prints the team-wide aggregates under the report table.
func RenderSummary(summary usecase.Summary, analyzedPRs int) {
	pterm.DefaultSection.Println("Team Summary")
	pterm.Info.Printf("Analyzed PRs: %d\n", analyzedPRs)
	pterm.Info.Printf("Total commits: %d\n", summary.TotalCommits)
	pterm.Info.Printf("Total PRs: %d\n", summary.TotalPRs)
	pterm.Info.Printf("Total reviews: %d\n", summary.TotalReviews)
	pterm.Info.Printf("Total comments: %d\n", summary.TotalComments)
	if summary.MostActive != "" {
		pterm.Info.Printf("Most active member: %s\n", summary.MostActive)
	}
	pterm.Info.Printf("Average reviews per member: %.1f\n", summary.AvgReviewsPerMember)
	pterm.Info.Printf("Average comments per member: %.1f\n", summary.AvgCommentsPerMember)
	pterm.Info.Printf("Average PR duration (hours): %.1f\n", summary.AvgPRDurationHours)
	pterm.Info.Printf("Average PR engagement: %.1f\n", summary.AvgPREngagement)
}

// RenderRateLimit prints the quota observed on the last response of a run.
func RenderRateLimit(snap gateway.RateLimitSnapshot, seen bool) {
	if !seen {
		pterm.Info.Println("Rate limit information not available yet")
		return
	}
	pterm.Info.Printf("API rate limit: %d/%d requests remaining (resets at %s)\n",
		snap.Remaining, snap.Limit, snap.Reset.Format(time.RFC1123))
}

// RenderScoringLegend explains every report column and the scoring weights.
// Printed by `report --explain`.
func RenderScoringLegend(w config.Scoring) {
	pterm.DefaultSection.Println("Report Columns")
	legend := pterm.TableData{
		{"username", "GitHub username of the team member"},
		{"commit_count", "Commits on the member's own pull requests"},
		{"pr_count", "Pull requests created by the member"},
		{"reviews_given", "Total PR reviews performed (approved + changes requested + commented)"},
		{"reviews_approved", "PRs approved by the member"},
		{"reviews_changes_requested", "PRs where the member requested changes"},
		{"reviews_commented", "PRs where the member left a review comment"},
		{"review_comments", "Inline comments made during code review"},
		{"pr_comments", "Discussion comments made on PRs"},
		{"total_comments", "Sum of inline and discussion comments"},
		{"avg_pr_duration_hours", "Average time the member's PRs stay open"},
		{"avg_pr_engagement", "Average engagement score on the member's PRs"},
		{"contribution_score", "Weighted sum of all activities"},
	}
	_ = pterm.DefaultTable.WithData(legend).Render()

	pterm.DefaultSection.Println("Contribution Score Weights")
	weights := pterm.TableData{
		{"Commits", fmt.Sprintf("%.1f points each", w.Commit)},
		{"Pull requests", fmt.Sprintf("%.1f points each, with a size multiplier", w.PullRequest)},
		{fmt.Sprintf("  large PR (> %d changes)", w.LargePRChanges), fmt.Sprintf("%.2fx", w.LargePRMultiplier)},
		{fmt.Sprintf("  medium PR (> %d changes)", w.MediumPRChanges), fmt.Sprintf("%.2fx", w.MediumPRMultiplier)},
		{"PR approvals", fmt.Sprintf("%.1f points each", w.Approve)},
		{"Changes requested", fmt.Sprintf("%.1f points each", w.ChangesRequested)},
		{"Review commented", fmt.Sprintf("%.1f points each", w.Commented)},
		{"Inline review comments", fmt.Sprintf("%.1f points each", w.InlineComment)},
		{"Discussion comments", fmt.Sprintf("%.1f points each", w.DiscussionComment)},
		{"Engagement bonus", fmt.Sprintf("%.1f points per average engagement", w.EngagementBonus)},
	}
	_ = pterm.DefaultTable.WithData(weights).Render()

	pterm.DefaultSection.Println("Engagement Score")
	engagement := pterm.TableData{
		{"Discussion comment", fmt.Sprintf("%.1f points", w.EngagementDiscussion)},
		{"Inline review comment", fmt.Sprintf("%.1f points", w.EngagementInline)},
		{"PR review", fmt.Sprintf("%.1f points", w.EngagementReview)},
	}
	_ = pterm.DefaultTable.WithData(engagement).Render()

	pterm.Info.Println("All metrics are calculated within the configured analysis window.")
}
