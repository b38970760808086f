package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/flyt-tools/teamstats/internal/vconnect"
)

var vcusersCmd = &cobra.Command{
	Use:   "vcusers",
	Short: "Fetch users from the Visma Connect identity provider",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		clientID := os.Getenv("VISMA_CLIENT_ID")
		clientSecret := os.Getenv("VISMA_CLIENT_SECRET")
		if clientID == "" || clientSecret == "" {
			fmt.Fprintln(os.Stderr, "Error: VISMA_CLIENT_ID and VISMA_CLIENT_SECRET must be set in environment variables.")
			os.Exit(1)
		}

		scopes, _ := cmd.Flags().GetStringSlice("scope")
		client := vconnect.NewClient(clientID, clientSecret, scopes)

		tokenOnly, _ := cmd.Flags().GetBool("token")
		if tokenOnly {
			accessToken, err := client.AccessToken(ctx)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to obtain access token: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(accessToken)
			return
		}

		domains, _ := cmd.Flags().GetStringSlice("domains")
		force, _ := cmd.Flags().GetBool("force")
		count, _ := cmd.Flags().GetBool("count")
		list, _ := cmd.Flags().GetBool("list")

		if len(domains) == 0 {
			if !force {
				fmt.Fprintln(os.Stderr, "No domains specified, this could be performance intensive. "+
					"Use --force if you want to do it anyway. Exiting.")
				os.Exit(1)
			}
			listUsers(ctx, client, "")
			return
		}

		if count {
			for _, domain := range domains {
				page, err := client.Users(ctx, domain, 1)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
				pterm.Info.Printf("%s total users: %d\n", domain, page.TotalUsers)
			}
		}
		if list {
			for _, domain := range domains {
				listUsers(ctx, client, domain)
			}
		}
	},
}

func listUsers(ctx context.Context, client *vconnect.Client, domain string) {
	users, err := client.AllUsers(ctx, domain)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	for _, user := range users {
		fmt.Println(user.Email)
	}
}

func init() {
	rootCmd.AddCommand(vcusersCmd)
	vcusersCmd.Flags().BoolP("token", "T", false, "Print an access token and exit")
	vcusersCmd.Flags().StringSliceP("scope", "s", nil, "Scopes to authorize for")
	vcusersCmd.Flags().StringSliceP("domains", "d", nil, "Email domains to process")
	vcusersCmd.Flags().BoolP("force", "f", false, "Allow listing without domains")
	vcusersCmd.Flags().BoolP("list", "l", false, "List user emails")
	vcusersCmd.Flags().BoolP("count", "c", false, "Count users per domain")
}
