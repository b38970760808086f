// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flyt-tools/teamstats/internal/collector"
	"github.com/flyt-tools/teamstats/internal/config"
	"github.com/flyt-tools/teamstats/internal/domain"
	"github.com/flyt-tools/teamstats/internal/gateway"
)

// Report is the outcome of one analysis run. Members are sorted descending
// by contribution score. The Failed* counters surface per-item failures that
// were excluded from the aggregate.
type Report struct {
	Members         []domain.MemberStats
	Days            int
	AnalyzedPRs     int
	IgnoredUsers    []string
	FailedPRFetches int
	FailedMembers   int
}

// Reporter orchestrates the report pipeline: roster, pull request walk,
// per-PR detail fan-out, per-member stats and scoring.
type Reporter struct {
	fetcher   gateway.Fetcher
	weights   config.Scoring
	workers   int
	chunkSize int
	ignored   map[string]struct{}
	logger    *logrus.Logger

	// now is replaced in tests for a stable analysis window.
	now func() time.Time
}

// NewReporter creates a Reporter. The ignore list is matched
// case-insensitively against roster logins; it does not filter the fetched
// PR pool, so activity on an ignored user's PRs still counts for roster
// members.
func NewReporter(fetcher gateway.Fetcher, weights config.Scoring, workers, chunkSize int, ignoredUsers []string, logger *logrus.Logger) *Reporter {
	ignored := make(map[string]struct{}, len(ignoredUsers))
	for _, u := range ignoredUsers {
		ignored[strings.ToLower(u)] = struct{}{}
	}
	return &Reporter{
		fetcher:   fetcher,
		weights:   weights,
		workers:   workers,
		chunkSize: chunkSize,
		ignored:   ignored,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate produces the team activity report for the last `days` days.
// Roster and PR-listing failures abort the run; per-PR and per-member
// failures are counted and the offending item is omitted.
func (r *Reporter) Generate(ctx context.Context, org, teamSlug, repo string, days int) (*Report, error) {
	r.logger.WithFields(logrus.Fields{"org": org, "team": teamSlug, "repo": repo, "days": days}).
		Info("Generating team report")

	members, err := r.fetcher.FetchTeamMembers(ctx, org, teamSlug)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team roster: %w", err)
	}
	roster := make([]domain.User, 0, len(members))
	for _, m := range members {
		if _, skip := r.ignored[strings.ToLower(m.Login)]; !skip {
			roster = append(roster, m)
		}
	}
	r.logger.WithFields(logrus.Fields{"members": len(roster), "ignored": len(members) - len(roster)}).
		Info("Fetched team roster")

	now := r.now().UTC()
	cutoff := now.AddDate(0, 0, -days)
	prs, err := r.fetcher.FetchPullRequests(ctx, org, repo, cutoff, days)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pull requests: %w", err)
	}
	r.logger.WithField("pull_requests", len(prs)).Info("Fetched relevant pull requests")

	details, failedPRs := r.fetchDetails(ctx, org, repo, prs)

	memberResults := collector.Collect(ctx, roster, r.workers, r.logger,
		func(ctx context.Context, member domain.User) (string, domain.MemberStats, error) {
			stats, err := r.computeMemberStats(ctx, org, repo, member.Login, details, now)
			return member.Login, stats, err
		})

	report := &Report{
		Days:            days,
		AnalyzedPRs:     len(prs),
		IgnoredUsers:    sortedKeys(r.ignored),
		FailedPRFetches: failedPRs,
		FailedMembers:   collector.Failures(memberResults),
	}
	for _, stats := range collector.Successes(memberResults) {
		report.Members = append(report.Members, stats)
	}
	sort.Slice(report.Members, func(i, j int) bool {
		a, b := report.Members[i], report.Members[j]
		if a.ContributionScore != b.ContributionScore {
			return a.ContributionScore > b.ContributionScore
		}
		return a.Username < b.Username
	})

	if failedPRs > 0 || report.FailedMembers > 0 {
		r.logger.WithFields(logrus.Fields{"pull_requests": failedPRs, "members": report.FailedMembers}).
			Warn("Some items failed and were excluded from the report")
	}
	return report, nil
}

// fetchDetails fans the per-PR detail fetches out in chunks, keeping peak
// in-flight requests bounded on large repositories.
func (r *Reporter) fetchDetails(ctx context.Context, org, repo string, prs []domain.PullRequest) (map[int]domain.PullRequestDetail, int) {
	details := make(map[int]domain.PullRequestDetail, len(prs))
	failed := 0
	for _, chunk := range collector.Chunk(prs, r.chunkSize) {
		results := collector.Collect(ctx, chunk, r.workers, r.logger,
			func(ctx context.Context, pr domain.PullRequest) (int, domain.PullRequestDetail, error) {
				detail, err := r.fetcher.FetchPullRequestDetail(ctx, org, repo, pr)
				return pr.Number, detail, err
			})
		for number, detail := range collector.Successes(results) {
			details[number] = detail
		}
		failed += collector.Failures(results)
	}
	return details, failed
}

// computeMemberStats aggregates one member's activity over the shared PR
// set. The commit count is the sum of commits across the member's own PRs.
func (r *Reporter) computeMemberStats(ctx context.Context, org, repo, username string, details map[int]domain.PullRequestDetail, now time.Time) (domain.MemberStats, error) {
	stats := domain.MemberStats{Username: username}

	var createdPRs []domain.PullRequest
	var durations, engagements []float64

	for _, detail := range details {
		if detail.PullRequest.User.Login == username {
			createdPRs = append(createdPRs, detail.PullRequest)
			durations = append(durations, detail.OpenDuration(now).Hours())
			engagements = append(engagements, engagementScore(detail, r.weights))
		}

		for _, review := range detail.Reviews {
			if review.User.Login != username {
				continue
			}
			switch review.State {
			case domain.ReviewApproved:
				stats.ReviewsApproved++
			case domain.ReviewChangesRequested:
				stats.ReviewsChangesRequested++
			case domain.ReviewCommented:
				stats.ReviewsCommented++
			}
		}
		for _, c := range detail.ReviewComments {
			if c.User.Login == username {
				stats.ReviewComments++
			}
		}
		for _, c := range detail.Comments {
			if c.User.Login == username {
				stats.PRComments++
			}
		}
	}

	stats.PRCount = len(createdPRs)
	stats.ReviewsGiven = stats.ReviewsApproved + stats.ReviewsChangesRequested + stats.ReviewsCommented
	stats.TotalComments = stats.ReviewComments + stats.PRComments

	for _, pr := range createdPRs {
		count, err := r.fetcher.FetchCommitCount(ctx, org, repo, pr.Number)
		if err != nil {
			return stats, fmt.Errorf("failed to count commits for %s: %w", username, err)
		}
		stats.CommitCount += count
	}

	stats.AvgPRDurationHours = mean(durations)
	stats.AvgPREngagement = mean(engagements)
	stats.ContributionScore = Score(stats, createdPRs, r.weights)
	return stats, nil
}

// mean guards the zero-PR case so averages never divide by zero.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
