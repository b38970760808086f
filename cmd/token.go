package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/flyt-tools/teamstats/internal/token"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Generate a signed development JWT from JWT_* environment variables",
	Run: func(cmd *cobra.Command, args []string) {
		secret, _ := cmd.Flags().GetString("secret")
		if secret == "" {
			secret = os.Getenv("JWT_DEVELOPMENT_SECRET")
		}
		if secret == "" {
			fmt.Fprintln(os.Stderr, "Error: provide --secret or set the JWT_DEVELOPMENT_SECRET environment variable.")
			os.Exit(1)
		}

		claims, err := token.ClaimsFromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		signed, err := token.Generate(claims, secret, time.Now())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate token: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(signed)
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringP("secret", "s", "", "Base64-encoded HS256 signing secret (defaults to JWT_DEVELOPMENT_SECRET)")
}
