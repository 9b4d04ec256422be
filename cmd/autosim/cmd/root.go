package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "autosim",
	Short: "An event-driven backtesting engine for trading strategies",
	Long: `Autosim replays historical bar data through trading strategies against a
virtual brokerage account and produces deterministic performance statistics.

It provides tools for:
  - Backtesting strategies over one or more instruments with a shared account
  - Risk-based position sizing with stop/target brackets
  - Spread, commission, leverage and margin modelling
  - Journaling trades and equity curves to CSV or SQLite`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
