package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-watchlist",
	Short: "A CLI for the stock watchlist analysis services",
	Long: `Stock watchlist keeps per-user watchlists of US, HK and A-share stocks and
generates a daily AI analysis report for every watched stock.

Run the service with "analysis-service serve" and manage the schema with "migrate up|down".`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
