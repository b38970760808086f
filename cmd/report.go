package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flyt-tools/teamstats/internal/cache"
	"github.com/flyt-tools/teamstats/internal/config"
	"github.com/flyt-tools/teamstats/internal/gateway"
	"github.com/flyt-tools/teamstats/internal/output"
	"github.com/flyt-tools/teamstats/internal/usecase"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a GitHub team activity report with contribution scoring",
	Long: `Aggregates commits, pull requests, reviews and comments for every member
of a GitHub team over the analysis window, scores each member's contribution
and prints a sorted table with team-wide aggregates. Responses are cached on
disk so repeated runs stay within the API quota.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
			os.Exit(1)
		}

		explain, _ := cmd.Flags().GetBool("explain")
		if explain {
			output.RenderScoringLegend(cfg.Scoring)
			return
		}

		org, _ := cmd.Flags().GetString("org")
		teamSlug, _ := cmd.Flags().GetString("team")
		repo, _ := cmd.Flags().GetString("repo")
		// Required unless --explain was given, so cobra's own required-flag
		// machinery cannot be used here.
		if org == "" || teamSlug == "" || repo == "" {
			fmt.Fprintln(os.Stderr, "Error: --org, --team and --repo are required when not using --explain.")
			_ = cmd.Usage()
			os.Exit(1)
		}

		githubToken := os.Getenv("GITHUB_TOKEN")
		if githubToken == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}

		days, _ := cmd.Flags().GetInt("days")
		ignoreUsers, _ := cmd.Flags().GetStringSlice("ignore-users")
		cacheTTLHours, _ := cmd.Flags().GetInt("cache-ttl")
		noCache, _ := cmd.Flags().GetBool("no-cache")
		workers, _ := cmd.Flags().GetInt("workers")

		ttl := time.Duration(cacheTTLHours) * time.Hour
		if noCache {
			ttl = 0
		}
		responseCache := cache.New(cfg.CacheDir, ttl, logger)

		githubGateway, err := gateway.NewGitHubGateway(githubToken, responseCache, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		reporter := usecase.NewReporter(githubGateway, cfg.Scoring, workers, cfg.ChunkSize, ignoreUsers, logger)

		pterm.Info.Println("Starting analysis...")
		start := time.Now()

		report, err := reporter.Generate(ctx, org, teamSlug, repo, days)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
			os.Exit(1)
		}

		if err := output.RenderReport(report); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render report: %v\n", err)
			os.Exit(1)
		}
		output.RenderSummary(usecase.Summarize(report.Members), report.AnalyzedPRs)

		pterm.Info.Printf("Analysis completed in %.2f seconds\n", time.Since(start).Seconds())
		snap, seen := githubGateway.RateLimit()
		output.RenderRateLimit(snap, seen)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("org", "o", "", "GitHub organization name")
	reportCmd.Flags().StringP("team", "t", "", "Team slug")
	reportCmd.Flags().StringP("repo", "r", "", "Repository name")
	reportCmd.Flags().Int("days", 90, "Number of days to analyze")
	reportCmd.Flags().StringSlice("ignore-users", nil, "GitHub usernames to exclude from the roster")
	reportCmd.Flags().Int("cache-ttl", 24, "Response cache TTL in hours")
	reportCmd.Flags().Bool("no-cache", false, "Disable the response cache")
	reportCmd.Flags().Int("workers", 5, "Number of parallel workers")
	reportCmd.Flags().Bool("explain", false, "Show the report columns and scoring weights, then exit")
}
