package tempo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewClient(server.URL, "secret-token", logger)
}

func TestClient_Myself(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/2/myself", r.URL.Path)
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"key":"JIRAUSER1","name":"alice","emailAddress":"alice@example.com","displayName":"Alice"}`)
	})

	client := setupTestClient(t, handler)
	user, err := client.Myself(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "Alice", user.DisplayName)
}

func TestClient_Teams_RepeatsExpandParams(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/tempo-teams/2/team/", r.URL.Path)
		assert.Equal(t, []string{"leaduser", "teamprogram"}, r.URL.Query()["expand"])
		fmt.Fprint(w, `[{"id":591,"name":"Social","leadUser":{"name":"alice","displayname":"Alice"}}]`)
	})

	client := setupTestClient(t, handler)
	teams, err := client.Teams(context.Background())
	require.NoError(t, err)
	require.Len(t, teams, 1)
	assert.Equal(t, 591, teams[0].ID)
	assert.Equal(t, "Alice", teams[0].LeadUser.DisplayName)
}

func TestClient_TimesheetApprovals_DefaultPeriod(t *testing.T) {
	firstOfMonth := time.Now()
	expected := time.Date(firstOfMonth.Year(), firstOfMonth.Month(), 1, 0, 0, 0, 0, time.Local).Format("2006-01-02")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/tempo-timesheets/4/timesheet-approval", r.URL.Path)
		assert.Equal(t, "591", r.URL.Query().Get("teamId"))
		assert.Equal(t, expected, r.URL.Query().Get("periodStartDate"))
		fmt.Fprint(w, `{"team":{"id":591,"name":"Social"},"period":{"dateFrom":"2025-08-01","dateTo":"2025-08-31"},"approvals":[{"user":{"name":"bob"},"status":"waiting_for_approval","workedSeconds":576000}]}`)
	})

	client := setupTestClient(t, handler)
	page, err := client.TimesheetApprovals(context.Background(), 591, time.Time{})
	require.NoError(t, err)
	require.Len(t, page.Approvals, 1)
	assert.Equal(t, "waiting_for_approval", page.Approvals[0].Status)
	assert.Equal(t, 576000, page.Approvals[0].WorkedSeconds)
}

func TestClient_NonOKStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"expired token"}`)
	})

	client := setupTestClient(t, handler)
	_, err := client.Myself(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}
