package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
)

var rateLimitCmd = &cobra.Command{
	Use:   "ratelimit",
	Short: "Show the current GitHub API quota",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		githubToken := os.Getenv("GITHUB_TOKEN")
		if githubToken == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: githubToken})
		client := github.NewClient(oauth2.NewClient(ctx, ts))

		limits, _, err := client.RateLimit.Get(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch rate limit: %v\n", err)
			os.Exit(1)
		}

		data := pterm.TableData{{"RESOURCE", "REMAINING", "LIMIT", "RESETS AT"}}
		for _, row := range []struct {
			name string
			rate *github.Rate
		}{
			{"core", limits.Core},
			{"search", limits.Search},
		} {
			if row.rate == nil {
				continue
			}
			data = append(data, []string{
				row.name,
				fmt.Sprintf("%d", row.rate.Remaining),
				fmt.Sprintf("%d", row.rate.Limit),
				row.rate.Reset.Time.Format(time.RFC1123),
			})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(rateLimitCmd)
}
