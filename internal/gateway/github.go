// Package gateway provides access to the GitHub REST API with response
// caching, Link-header pagination and rate-limit awareness.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/flyt-tools/teamstats/internal/cache"
	"github.com/flyt-tools/teamstats/internal/domain"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Fetcher defines the behavior of a gateway for fetching team activity data.
type Fetcher interface {
	FetchTeamMembers(ctx context.Context, org, teamSlug string) ([]domain.User, error)
	// FetchPullRequests returns the pull requests of org/repo updated at or
	// after cutoff. The days value only labels the cache entry.
	FetchPullRequests(ctx context.Context, org, repo string, cutoff time.Time, days int) ([]domain.PullRequest, error)
	FetchPullRequestDetail(ctx context.Context, org, repo string, pr domain.PullRequest) (domain.PullRequestDetail, error)
	FetchCommitCount(ctx context.Context, org, repo string, number int) (int, error)
}

// GitHubGateway is the concrete implementation of the Fetcher interface.
type GitHubGateway struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.Cache
	limiter    *RateLimitTracker
	logger     *logrus.Logger
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
// The HTTP transport chains the token source with a secondary-rate-limit
// waiter; the primary quota is handled by the gateway's own tracker.
func NewGitHubGateway(token string, responseCache *cache.Cache, logger *logrus.Logger) (*GitHubGateway, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		baseURL:    DefaultBaseURL,
		httpClient: httpClient,
		cache:      responseCache,
		limiter:    NewRateLimitTracker(logger),
		logger:     logger,
	}, nil
}

// RateLimit exposes the last observed API quota for status output.
func (g *GitHubGateway) RateLimit() (RateLimitSnapshot, bool) {
	return g.limiter.Snapshot()
}

// FetchTeamMembers returns the full membership of a team.
func (g *GitHubGateway) FetchTeamMembers(ctx context.Context, org, teamSlug string) ([]domain.User, error) {
	url := fmt.Sprintf("%s/orgs/%s/teams/%s/members", g.baseURL, org, teamSlug)
	items, err := g.fetchAll(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch team members: %w", err)
	}
	var members []domain.User
	if err := decodeItems(items, &members); err != nil {
		return nil, fmt.Errorf("failed to decode team members: %w", err)
	}
	return members, nil
}

// FetchPullRequests walks the pull request listing newest-first per state and
// keeps the PRs updated at or after the cutoff. A state's walk stops once an
// entire page's oldest item falls before the cutoff; in-range items on that
// final page still count. The filtered result is cached under the listing
// URL so repeated runs within the TTL skip the walk entirely.
func (g *GitHubGateway) FetchPullRequests(ctx context.Context, org, repo string, cutoff time.Time, days int) ([]domain.PullRequest, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls", g.baseURL, org, repo)
	cacheParams := map[string]string{
		"state":     "all",
		"sort":      "updated",
		"direction": "desc",
		"days":      strconv.Itoa(days),
	}

	if cached, ok := g.cache.Get(url, cacheParams); ok {
		g.logger.Debug("Cache hit for pull request listing")
		var prs []domain.PullRequest
		if err := json.Unmarshal(cached, &prs); err == nil {
			return prs, nil
		}
	}
	g.logger.Debug("Cache miss for pull request listing")

	var relevant []domain.PullRequest
	for _, state := range []string{"closed", "open"} {
		for pageNum := 1; ; pageNum++ {
			g.logger.WithFields(logrus.Fields{"state": state, "page": pageNum}).Debug("Fetching pull requests")
			p, err := g.getPage(ctx, url, map[string]string{
				"state":     state,
				"sort":      "updated",
				"direction": "desc",
				"per_page":  "100",
				"page":      strconv.Itoa(pageNum),
			})
			if err != nil {
				return nil, fmt.Errorf("failed to fetch %s pull requests: %w", state, err)
			}
			var batch []domain.PullRequest
			if err := decodeItems(p.items, &batch); err != nil {
				return nil, fmt.Errorf("failed to decode pull requests: %w", err)
			}
			if len(batch) == 0 {
				break
			}
			for _, pr := range batch {
				if !pr.UpdatedAt.Before(cutoff) {
					relevant = append(relevant, pr)
				}
			}
			// The listing is sorted by updated desc, so once the oldest item
			// of a page is out of range every later page is too.
			if batch[len(batch)-1].UpdatedAt.Before(cutoff) {
				break
			}
		}
	}

	if encoded, err := json.Marshal(relevant); err == nil {
		g.cache.Set(url, cacheParams, encoded)
	}
	return relevant, nil
}

// FetchPullRequestDetail fetches the reviews, inline review comments and
// discussion comments of one pull request.
func (g *GitHubGateway) FetchPullRequestDetail(ctx context.Context, org, repo string, pr domain.PullRequest) (domain.PullRequestDetail, error) {
	detail := domain.PullRequestDetail{PullRequest: pr}

	reviewsURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/reviews", g.baseURL, org, repo, pr.Number)
	items, err := g.fetchAll(ctx, reviewsURL, nil)
	if err != nil {
		return detail, fmt.Errorf("failed to fetch reviews for PR #%d: %w", pr.Number, err)
	}
	if err := decodeItems(items, &detail.Reviews); err != nil {
		return detail, fmt.Errorf("failed to decode reviews for PR #%d: %w", pr.Number, err)
	}

	reviewCommentsURL := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments", g.baseURL, org, repo, pr.Number)
	items, err = g.fetchAll(ctx, reviewCommentsURL, nil)
	if err != nil {
		return detail, fmt.Errorf("failed to fetch review comments for PR #%d: %w", pr.Number, err)
	}
	if err := decodeItems(items, &detail.ReviewComments); err != nil {
		return detail, fmt.Errorf("failed to decode review comments for PR #%d: %w", pr.Number, err)
	}

	commentsURL := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments", g.baseURL, org, repo, pr.Number)
	items, err = g.fetchAll(ctx, commentsURL, nil)
	if err != nil {
		return detail, fmt.Errorf("failed to fetch comments for PR #%d: %w", pr.Number, err)
	}
	if err := decodeItems(items, &detail.Comments); err != nil {
		return detail, fmt.Errorf("failed to decode comments for PR #%d: %w", pr.Number, err)
	}

	return detail, nil
}

// FetchCommitCount returns the number of commits on one pull request.
func (g *GitHubGateway) FetchCommitCount(ctx context.Context, org, repo string, number int) (int, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/commits", g.baseURL, org, repo, number)
	items, err := g.fetchAll(ctx, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch commits for PR #%d: %w", number, err)
	}
	return len(items), nil
}
