// Package tempo is a thin client for the Jira Tempo REST APIs used by the
// timesheet lookups. The endpoints are single-page bearer-token JSON, so the
// client stays deliberately small.
package tempo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// User is the current Jira user.
type User struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Email       string `json:"emailAddress"`
	DisplayName string `json:"displayName"`
}

// TeamLead is the expanded lead user of a team. Tempo reports the display
// name in lowercase-key form.
type TeamLead struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	DisplayName string `json:"displayname"`
}

// Team is one Tempo team.
type Team struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Lead     string   `json:"lead"`
	LeadUser TeamLead `json:"leadUser"`
}

// Membership is one member of a team.
type Membership struct {
	ID     int `json:"id"`
	Member struct {
		Name        string `json:"name"`
		Key         string `json:"key"`
		DisplayName string `json:"displayname"`
	} `json:"member"`
	MembershipInfo struct {
		Role struct {
			Name string `json:"name"`
		} `json:"role"`
		Availability string `json:"availability"`
		Status       string `json:"status"`
	} `json:"membership"`
}

// Approval is one member's timesheet state for a period.
type Approval struct {
	User struct {
		Name        string `json:"name"`
		Key         string `json:"key"`
		DisplayName string `json:"displayName"`
	} `json:"user"`
	Status           string `json:"status"`
	WorkedSeconds    int    `json:"workedSeconds"`
	SubmittedSeconds int    `json:"submittedSeconds"`
	RequiredSeconds  int    `json:"requiredSeconds"`
}

// ApprovalPage is the timesheet approval response for a team and period.
type ApprovalPage struct {
	Team struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"team"`
	Period struct {
		DateFrom string `json:"dateFrom"`
		DateTo   string `json:"dateTo"`
	} `json:"period"`
	Approvals []Approval `json:"approvals"`
}

// Client talks to a Jira instance with the Tempo plugins installed.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient creates a Tempo client for the given Jira base URL.
func NewClient(baseURL, token string, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	c.logger.WithField("url", u).Debug("Tempo GET")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %w", u, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("request to %s failed with status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// Myself returns the authenticated user.
func (c *Client) Myself(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "rest/api/2/myself", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Teams lists the teams visible to the authenticated user, with lead users
// expanded. The API expects repeated expand parameters, not a comma list.
func (c *Client) Teams(ctx context.Context) ([]Team, error) {
	params := url.Values{"expand": []string{"leaduser", "teamprogram"}}
	var teams []Team
	if err := c.get(ctx, "rest/tempo-teams/2/team/", params, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// TeamMembers lists the members of one team.
func (c *Client) TeamMembers(ctx context.Context, teamID int) ([]Membership, error) {
	var members []Membership
	endpoint := fmt.Sprintf("rest/tempo-teams/2/team/%d/member", teamID)
	if err := c.get(ctx, endpoint, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// TimesheetApprovals returns the approval states of a team for the period
// starting at periodStart. A zero periodStart defaults to the first day of
// the current month.
func (c *Client) TimesheetApprovals(ctx context.Context, teamID int, periodStart time.Time) (*ApprovalPage, error) {
	if periodStart.IsZero() {
		now := time.Now()
		periodStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	}
	params := url.Values{
		"teamId":          []string{strconv.Itoa(teamID)},
		"periodStartDate": []string{periodStart.Format("2006-01-02")},
	}
	var page ApprovalPage
	if err := c.get(ctx, "rest/tempo-timesheets/4/timesheet-approval", params, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
