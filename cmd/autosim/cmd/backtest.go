package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/autosim/backtest"
	"github.com/rustyeddy/autosim/config"
	"github.com/rustyeddy/autosim/journal"
	"github.com/rustyeddy/autosim/market"
	"github.com/rustyeddy/autosim/market/data"
	"github.com/rustyeddy/autosim/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a configured backtest",
	Long: `Backtest loads a run configuration, replays the configured bar data through
the strategy and prints the trade summary.

Example:
  autosim backtest --config run.yaml --db results.sqlite`,
	RunE: runBacktest,
}

var (
	btConfigPath string
	btDBPath     string
	btCSVPrefix  string
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btConfigPath, "config", "c", "", "path to run configuration (YAML or JSON) (required)")
	backtestCmd.Flags().StringVarP(&btDBPath, "db", "d", "", "journal the run to this SQLite database")
	backtestCmd.Flags().StringVar(&btCSVPrefix, "csv", "", "journal the run to <prefix>_{trades,orders,equity}.csv")

	backtestCmd.MarkFlagRequired("config")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(btConfigPath)
	if err != nil {
		return err
	}

	factory, err := strategies.Lookup(cfg.Strategy.Name)
	if err != nil {
		return err
	}

	window, err := cfg.Window.Parse()
	if err != nil {
		return err
	}

	series := make(map[string]*market.Series, len(cfg.Strategy.Watchlist))
	for _, instr := range cfg.Strategy.Watchlist {
		path := filepath.Join(cfg.Data.Directory, cfg.Data.Files[instr])
		s, err := data.LoadSeries(instr, path, window)
		if err != nil {
			return fmt.Errorf("load %s: %w", instr, err)
		}
		series[instr] = s
	}

	runner, err := backtest.New(backtest.Config{
		Watchlist: cfg.Strategy.Watchlist,
		Series:    series,
		Account:   cfg.Account.Sim(),
		NewStrategy: func() backtest.Strategy {
			return factory(cfg.Strategy)
		},
	})
	if err != nil {
		return err
	}

	res, err := runner.Run()
	if err != nil {
		return err
	}

	if err := journalResult(cfg.Strategy.Name, res); err != nil {
		return err
	}

	printSummary(cfg, res)
	return nil
}

func journalResult(strategy string, res backtest.Result) error {
	if btDBPath != "" {
		j, err := journal.NewSQLite(btDBPath)
		if err != nil {
			return fmt.Errorf("open journal db: %w", err)
		}
		defer j.Close()
		if _, err := journal.WriteResult(j, strategy, res); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	if btCSVPrefix != "" {
		j, err := journal.NewCSV(
			btCSVPrefix+"_trades.csv",
			btCSVPrefix+"_orders.csv",
			btCSVPrefix+"_equity.csv",
		)
		if err != nil {
			return fmt.Errorf("open csv journal: %w", err)
		}
		defer j.Close()
		if _, err := journal.WriteResult(j, strategy, res); err != nil {
			return fmt.Errorf("journal: %w", err)
		}
	}
	return nil
}

func printSummary(cfg *config.Config, res backtest.Result) {
	s := res.Summary

	fmt.Printf("Backtest Complete: %s on %v\n", cfg.Strategy.Name, cfg.Strategy.Watchlist)
	if res.Aborted {
		fmt.Printf("  PARTIAL RESULT: %s\n", res.Reason)
	}
	fmt.Printf("  Trades:          %d (%d long / %d short)\n",
		s.NoTrades, s.LongTrades.NoTrades, s.ShortTrades.NoTrades)
	fmt.Printf("  Ending Balance:  %.3f\n", s.EndingBalance)
	fmt.Printf("  Realized P/L:    %.3f\n", s.RealizedPL)
	fmt.Printf("  Commission:      %.3f\n", s.TotalCommission)
	fmt.Printf("  Win Rate:        %.1f%%\n", 100*s.WinRate)
	fmt.Printf("  Avg R-Multiple:  %.2f\n", s.AvgRMultiple)
	fmt.Printf("  Max Drawdown:    %.1f%%\n", 100*s.MaxDrawdown)
	fmt.Printf("  Rejected/Cancelled/Open: %d/%d/%d\n",
		s.NoRejected, s.NoCancelled, s.NoOpen)
}
