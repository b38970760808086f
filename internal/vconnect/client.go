// Package vconnect is a client for the Visma Connect identity provider:
// client-credentials token issuance and paged user listing.
package vconnect

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2/clientcredentials"
)

// DefaultScope is requested when the caller does not name any scopes.
const DefaultScope = "publicapi:user:read"

// Default endpoints of the hosted service; overridable for tests.
const (
	DefaultTokenURL = "https://connect.visma.com/connect/token"
	DefaultAPIURL   = "https://public-api.connect.visma.com"
)

// User is one identity-provider account.
type User struct {
	Email string `json:"email"`
}

// UsersPage is one page of the user listing.
type UsersPage struct {
	Users      []User `json:"users"`
	TotalUsers int    `json:"total_users"`
	TotalPages int    `json:"total_pages"`
}

// Client fetches users from the identity provider. The token flow runs
// through oauth2's client-credentials support, so tokens are refreshed
// transparently.
type Client struct {
	apiURL string
	creds  *clientcredentials.Config
}

// Option adjusts a Client, mainly for tests.
type Option func(*Client)

// WithEndpoints overrides the token and API URLs.
func WithEndpoints(tokenURL, apiURL string) Option {
	return func(c *Client) {
		c.creds.TokenURL = tokenURL
		c.apiURL = strings.TrimRight(apiURL, "/")
	}
}

// NewClient creates a client with the given credentials. Scopes default to
// DefaultScope when empty.
func NewClient(clientID, clientSecret string, scopes []string, opts ...Option) *Client {
	if len(scopes) == 0 {
		scopes = []string{DefaultScope}
	}
	c := &Client{
		apiURL: DefaultAPIURL,
		creds: &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     DefaultTokenURL,
			Scopes:       scopes,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AccessToken fetches a raw access token, for callers that want to use it
// outside this client.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to obtain access token: %w", err)
	}
	return token.AccessToken, nil
}

// Users fetches one page of users, optionally restricted to email addresses
// under the given domain.
func (c *Client) Users(ctx context.Context, domain string, page int) (*UsersPage, error) {
	if page < 1 {
		page = 1
	}
	params := url.Values{"page": []string{strconv.Itoa(page)}}
	if domain != "" {
		params.Set("email", "%@"+domain)
	}
	u := c.apiURL + "/v1.0/users?" + params.Encode()

	resp, err := c.creds.Client(ctx).Get(u)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch users for %q: status %d", domain, resp.StatusCode)
	}

	var usersPage UsersPage
	if err := json.Unmarshal(body, &usersPage); err != nil {
		return nil, fmt.Errorf("failed to decode users response: %w", err)
	}
	return &usersPage, nil
}

// AllUsers walks every page of the listing and returns the concatenated
// users. An explicit loop; page count drives termination, not recursion.
func (c *Client) AllUsers(ctx context.Context, domain string) ([]User, error) {
	var all []User
	for page := 1; ; page++ {
		usersPage, err := c.Users(ctx, domain, page)
		if err != nil {
			return nil, err
		}
		all = append(all, usersPage.Users...)
		if page >= usersPage.TotalPages {
			break
		}
	}
	return all, nil
}
