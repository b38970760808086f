// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	logger  *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "teamstats",
	Short: "Developer-productivity reports and lookups for GitHub, Tempo and Visma Connect.",
	Long: `teamstats is a toolbox of small commands used by team leads:
a GitHub team activity report with contribution scoring, Tempo timesheet
lookups, identity-provider user queries and development JWT generation.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Credentials commonly live in a local .env file; a missing file is fine.
		_ = godotenv.Load()

		logger = logrus.New()
		logger.SetOutput(os.Stderr)
		if verbose {
			logger.SetLevel(logrus.DebugLevel)
		} else {
			logger.SetLevel(logrus.WarnLevel)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose/debug logging")
}
