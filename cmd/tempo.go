package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flyt-tools/teamstats/internal/tempo"
)

var tempoCmd = &cobra.Command{
	Use:   "tempo",
	Short: "Track Tempo timesheets via the Jira API",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		baseURL, _ := cmd.Flags().GetString("base-url")
		if baseURL == "" {
			baseURL = os.Getenv("JIRA_BASE_URL")
		}
		if baseURL == "" {
			fmt.Fprintln(os.Stderr, "Error: set --base-url or the JIRA_BASE_URL environment variable.")
			os.Exit(1)
		}
		jiraToken := os.Getenv("JIRA_TOKEN")
		if jiraToken == "" {
			fmt.Fprintln(os.Stderr, "Error: JIRA_TOKEN environment variable is not set.")
			os.Exit(1)
		}
		client := tempo.NewClient(baseURL, jiraToken, logger)

		whoami, _ := cmd.Flags().GetBool("whoami")
		teams, _ := cmd.Flags().GetBool("teams")
		membersTeam, _ := cmd.Flags().GetInt("members")
		approvalsTeam, _ := cmd.Flags().GetInt("approvals")

		switch {
		case whoami:
			runTempoWhoami(ctx, client)
		case teams:
			runTempoTeams(ctx, client)
		case membersTeam > 0:
			runTempoMembers(ctx, client, membersTeam)
		case approvalsTeam > 0:
			periodStart, _ := cmd.Flags().GetString("period-start")
			runTempoApprovals(ctx, client, approvalsTeam, periodStart)
		default:
			fmt.Fprintln(os.Stderr, "Error: choose one of --whoami, --teams, --members or --approvals.")
			_ = cmd.Usage()
			os.Exit(1)
		}
	},
}

func runTempoWhoami(ctx context.Context, client *tempo.Client) {
	user, err := client.Myself(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve user information: %v\n", err)
		os.Exit(1)
	}
	data := pterm.TableData{
		{"Key", user.Key},
		{"Name", user.Name},
		{"Email", user.Email},
		{"Display name", user.DisplayName},
	}
	_ = pterm.DefaultTable.WithData(data).Render()
}

func runTempoTeams(ctx context.Context, client *tempo.Client) {
	me, err := client.Myself(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve user information: %v\n", err)
		os.Exit(1)
	}
	teams, err := client.Teams(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve teams: %v\n", err)
		os.Exit(1)
	}
	if len(teams) == 0 {
		pterm.Info.Println("You don't belong to any teams.")
		return
	}

	data := pterm.TableData{{"ID", "NAME", "LEADER", "YOU ARE LEADER"}}
	for _, team := range teams {
		leadName := team.LeadUser.DisplayName
		if leadName == "" {
			leadName = team.LeadUser.Name
		}
		isLead := ""
		if team.Lead == me.Key {
			isLead = "yes"
		}
		data = append(data, []string{strconv.Itoa(team.ID), team.Name, leadName, isLead})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runTempoMembers(ctx context.Context, client *tempo.Client, teamID int) {
	members, err := client.TeamMembers(ctx, teamID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve team members: %v\n", err)
		os.Exit(1)
	}
	data := pterm.TableData{{"NAME", "DISPLAY NAME", "ROLE", "AVAILABILITY", "STATUS"}}
	for _, m := range members {
		data = append(data, []string{
			m.Member.Name,
			m.Member.DisplayName,
			m.MembershipInfo.Role.Name,
			m.MembershipInfo.Availability,
			m.MembershipInfo.Status,
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func runTempoApprovals(ctx context.Context, client *tempo.Client, teamID int, periodStart string) {
	var start time.Time
	if periodStart != "" {
		parsed, err := time.Parse("2006-01-02", periodStart)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --period-start format, expected YYYY-MM-DD: %v\n", err)
			os.Exit(1)
		}
		start = parsed
	}

	page, err := client.TimesheetApprovals(ctx, teamID, start)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to retrieve timesheet approvals: %v\n", err)
		os.Exit(1)
	}

	pterm.DefaultSection.Printf("Timesheet approvals for %s (%s to %s)",
		page.Team.Name, page.Period.DateFrom, page.Period.DateTo)
	data := pterm.TableData{{"USER", "STATUS", "WORKED", "SUBMITTED", "REQUIRED"}}
	for _, a := range page.Approvals {
		data = append(data, []string{
			a.User.DisplayName,
			a.Status,
			formatHours(a.WorkedSeconds),
			formatHours(a.SubmittedSeconds),
			formatHours(a.RequiredSeconds),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func formatHours(seconds int) string {
	return fmt.Sprintf("%.1fh", float64(seconds)/3600)
}

func init() {
	rootCmd.AddCommand(tempoCmd)
	tempoCmd.Flags().String("base-url", "", "Jira base URL (defaults to JIRA_BASE_URL)")
	tempoCmd.Flags().Bool("whoami", false, "Show current user information")
	tempoCmd.Flags().Bool("teams", false, "List all teams you belong to")
	tempoCmd.Flags().Int("members", 0, "List members of a team by ID")
	tempoCmd.Flags().Int("approvals", 0, "Show timesheet approvals for a team by ID")
	tempoCmd.Flags().String("period-start", "", "Start date for the approval period (YYYY-MM-DD, default: first of the month)")
}
