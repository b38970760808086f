package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flyt-tools/teamstats/internal/cache"
	"github.com/flyt-tools/teamstats/internal/domain"
)

// setupTestGateway creates a GitHubGateway that talks to a mock HTTP server.
func setupTestGateway(t *testing.T, handler http.Handler, ttl time.Duration) (*GitHubGateway, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	gateway := &GitHubGateway{
		baseURL:    server.URL,
		httpClient: server.Client(),
		cache:      cache.New(t.TempDir(), ttl, logger),
		limiter:    NewRateLimitTracker(logger),
		logger:     logger,
	}
	return gateway, server
}

func TestParseNextLink(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{
			name:     "next and last relations",
			header:   `<https://api.github.com/repositories/1/pulls?page=2>; rel="next", <https://api.github.com/repositories/1/pulls?page=9>; rel="last"`,
			expected: "https://api.github.com/repositories/1/pulls?page=2",
		},
		{
			name:     "no next relation on the last page",
			header:   `<https://api.github.com/repositories/1/pulls?page=8>; rel="prev", <https://api.github.com/repositories/1/pulls?page=1>; rel="first"`,
			expected: "",
		},
		{
			name:     "empty header",
			header:   "",
			expected: "",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, parseNextLink(tc.header))
		})
	}
}

func TestFetchAll_FollowsPagination(t *testing.T) {
	var requests atomic.Int32
	var serverURL string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=2>; rel="next"`, serverURL))
			fmt.Fprint(w, `[{"id":1},{"id":2}]`)
		case "2":
			w.Header().Set("Link", fmt.Sprintf(`<%s/items?page=3>; rel="next"`, serverURL))
			fmt.Fprint(w, `[{"id":3}]`)
		case "3":
			fmt.Fprint(w, `[{"id":4}]`)
		}
	})

	gateway, server := setupTestGateway(t, handler, time.Hour)
	serverURL = server.URL

	items, err := gateway.fetchAll(context.Background(), server.URL+"/items", nil)
	require.NoError(t, err)

	assert.Equal(t, int32(3), requests.Load(), "one request per page")
	var ids []struct {
		ID int `json:"id"`
	}
	require.NoError(t, decodeItems(items, &ids))
	require.Len(t, ids, 4)
	assert.Equal(t, 1, ids[0].ID)
	assert.Equal(t, 4, ids[3].ID)
}

func TestFetchAll_NonListShortCircuit(t *testing.T) {
	var requests atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `{"number":42,"title":"single resource"}`)
	})

	gateway, server := setupTestGateway(t, handler, time.Hour)

	items, err := gateway.fetchAll(context.Background(), server.URL+"/pulls/42", nil)
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load(), "a single-object response must not paginate")
	require.Len(t, items, 1)

	var pr domain.PullRequest
	require.NoError(t, json.Unmarshal(items[0], &pr))
	assert.Equal(t, 42, pr.Number)
}

func TestFetchAll_HTTPError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"token lacks scope"}`)
	})

	gateway, server := setupTestGateway(t, handler, time.Hour)

	_, err := gateway.fetchAll(context.Background(), server.URL+"/orgs/acme/teams/core/members", nil)
	require.Error(t, err)

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.StatusCode)
}

func TestFetchAll_ServesFromCache(t *testing.T) {
	var requests atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, `[{"login":"alice"}]`)
	})

	gateway, server := setupTestGateway(t, handler, time.Hour)
	url := server.URL + "/members"

	_, err := gateway.fetchAll(context.Background(), url, map[string]string{"per_page": "100"})
	require.NoError(t, err)

	items, err := gateway.fetchAll(context.Background(), url, map[string]string{"per_page": "100"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), requests.Load(), "second call must be served from cache")
	require.Len(t, items, 1)
}

func TestFetchAll_RecordsRateLimitHeaders(t *testing.T) {
	reset := time.Now().Add(20 * time.Minute)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for k, v := range quotaHeaders(120, 5000, reset) {
			w.Header().Set(k, v[0])
		}
		fmt.Fprint(w, `[]`)
	})

	gateway, server := setupTestGateway(t, handler, time.Hour)

	_, err := gateway.fetchAll(context.Background(), server.URL+"/items", nil)
	require.NoError(t, err)

	snap, seen := gateway.RateLimit()
	require.True(t, seen)
	assert.Equal(t, 120, snap.Remaining)
	assert.Equal(t, 5000, snap.Limit)
}

func TestGitHubGateway_FetchTeamMembers(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orgs/acme/teams/core/members", r.URL.Path)
		assert.Equal(t, "application/vnd.github.v3+json", r.Header.Get("Accept"))
		fmt.Fprint(w, `[{"login":"alice"},{"login":"bob"}]`)
	})

	gateway, _ := setupTestGateway(t, handler, time.Hour)

	members, err := gateway.FetchTeamMembers(context.Background(), "acme", "core")
	require.NoError(t, err)
	assert.Equal(t, []domain.User{{Login: "alice"}, {Login: "bob"}}, members)
}

func TestGitHubGateway_FetchPullRequests_StopsAtCutoff(t *testing.T) {
	now := time.Now().UTC()
	cutoff := now.AddDate(0, 0, -30)

	prJSON := func(number int, updated time.Time) string {
		return fmt.Sprintf(`{"number":%d,"user":{"login":"alice"},"created_at":%q,"updated_at":%q}`,
			number, updated.Add(-48*time.Hour).Format(time.RFC3339), updated.Format(time.RFC3339))
	}

	var closedPages atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("direction"))

		switch q.Get("state") {
		case "closed":
			closedPages.Add(1)
			switch q.Get("page") {
			case "1":
				fmt.Fprintf(w, "[%s,%s]", prJSON(10, now.AddDate(0, 0, -1)), prJSON(9, now.AddDate(0, 0, -10)))
			case "2":
				// Partial page: #8 is in range, #7 is past the cutoff, so the
				// walk must keep #8 and stop here.
				fmt.Fprintf(w, "[%s,%s]", prJSON(8, now.AddDate(0, 0, -20)), prJSON(7, now.AddDate(0, 0, -60)))
			default:
				t.Errorf("unexpected closed page %q after cutoff", q.Get("page"))
				fmt.Fprint(w, "[]")
			}
		case "open":
			if q.Get("page") == "1" {
				fmt.Fprintf(w, "[%s]", prJSON(11, now.AddDate(0, 0, -2)))
			} else {
				fmt.Fprint(w, "[]")
			}
		}
	})

	gateway, _ := setupTestGateway(t, handler, time.Hour)

	prs, err := gateway.FetchPullRequests(context.Background(), "acme", "widgets", cutoff, 30)
	require.NoError(t, err)
	assert.Equal(t, int32(2), closedPages.Load(), "walk must stop after the first out-of-range page")

	numbers := make([]int, 0, len(prs))
	for _, pr := range prs {
		numbers = append(numbers, pr.Number)
	}
	assert.Equal(t, []int{10, 9, 8, 11}, numbers)
}

func TestGitHubGateway_FetchPullRequestDetail(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/widgets/pulls/7/reviews":
			fmt.Fprint(w, `[{"user":{"login":"bob"},"state":"APPROVED"}]`)
		case "/repos/acme/widgets/pulls/7/comments":
			fmt.Fprint(w, `[{"user":{"login":"bob"}},{"user":{"login":"carol"}}]`)
		case "/repos/acme/widgets/issues/7/comments":
			fmt.Fprint(w, `[{"user":{"login":"alice"}}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	gateway, _ := setupTestGateway(t, handler, time.Hour)

	pr := domain.PullRequest{Number: 7, User: domain.User{Login: "alice"}}
	detail, err := gateway.FetchPullRequestDetail(context.Background(), "acme", "widgets", pr)
	require.NoError(t, err)
	assert.Len(t, detail.Reviews, 1)
	assert.Len(t, detail.ReviewComments, 2)
	assert.Len(t, detail.Comments, 1)
	assert.Equal(t, domain.ReviewApproved, detail.Reviews[0].State)
}

func TestGitHubGateway_FetchCommitCount(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/widgets/pulls/3/commits", r.URL.Path)
		fmt.Fprint(w, `[{"sha":"a"},{"sha":"b"},{"sha":"c"}]`)
	})

	gateway, _ := setupTestGateway(t, handler, time.Hour)

	count, err := gateway.FetchCommitCount(context.Background(), "acme", "widgets", 3)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}
