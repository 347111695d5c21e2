package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"PortfolioTracker/internal/model"
	"PortfolioTracker/internal/report"
	"PortfolioTracker/internal/scheduler"
	"PortfolioTracker/internal/server"
	"PortfolioTracker/internal/tracker"
)

// withApp wires the session, runs fn and releases the session's resources.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

func printSnapshot(cmd *cobra.Command, snap *model.AnalysisSnapshot) error {
	if md, _ := cmd.Flags().GetBool("markdown"); md {
		out, err := report.RenderTerminal(report.FormatMarkdown(snap))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), report.FormatText(snap))
	return nil
}

var addCmd = &cobra.Command{
	Use:   "add TICKER QUANTITY",
	Short: "Add a holding at its current market price",
	Example: `  tracker add AAPL 10
  tracker add btc-usd 0.25
  tracker add --markdown MSFT 3`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		qty, err := tracker.ParseQuantity(args[1])
		if err != nil {
			return err
		}
		snap, err := a.session.AddHolding(cmd.Context(), args[0], qty)
		if err != nil {
			if errors.Is(err, tracker.ErrFetch) {
				return fmt.Errorf("failed to fetch price, check the ticker: %w", err)
			}
			return err
		}
		if err := a.save(); err != nil {
			return err
		}
		return printSnapshot(cmd, snap)
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List holdings with their last known price and value",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		fmt.Fprint(cmd.OutOrStdout(), report.FormatHoldings(a.session.Holdings()))
		return nil
	}),
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run a full analysis of the portfolio",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		return printSnapshot(cmd, a.session.Analyze(cmd.Context()))
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export [PATH]",
	Short: "Export holdings as JSON to PATH, or to stdout",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if len(args) == 0 {
			return a.session.Export(cmd.OutOrStdout())
		}
		if err := a.session.SaveFile(args[0]); err != nil {
			return fmt.Errorf("export %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "exported %d holdings to %s\n", len(a.session.Holdings()), args[0])
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Replace holdings with the contents of a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()

		if err := a.session.Import(f); err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		if err := a.save(); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatHoldings(a.session.Holdings()))
		return nil
	}),
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded analysis runs",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if a.journal == nil {
			return errors.New("run journal is disabled, set database.sqlite_path")
		}
		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := a.journal.RecentRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), report.FormatRuns(runs))
		return nil
	}),
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the analysis on the configured cron schedule",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		ctx := cmd.Context()
		sched := scheduler.NewScheduler(ctx, a.session, log)
		sched.OnSnapshot = func(snap *model.AnalysisSnapshot) {
			if err := printSnapshot(cmd, snap); err != nil {
				log.Error().Err(err).Msg("print snapshot")
			}
		}
		if err := sched.Register(cfg.Schedule.AnalysisCron); err != nil {
			return err
		}

		sched.RunNow()
		sched.Start()
		log.Info().Str("cron", cfg.Schedule.AnalysisCron).Msg("watching portfolio, press Ctrl+C to stop")

		<-ctx.Done()
		log.Info().Msg("shutdown signal received, stopping...")
		sched.Stop()
		return nil
	}),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local HTTP API",
	Args:  cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}
		srv := server.New(server.Config{
			Addr:    cfg.Server.Addr,
			Log:     log,
			Session: a.session,
			Version: version,
		})

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		ctx := cmd.Context()
		select {
		case err := <-errCh:
			return fmt.Errorf("http server: %w", err)
		case <-ctx.Done():
		}

		log.Info().Msg("shutdown signal received, stopping...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
		return a.save()
	}),
}

func init() {
	// Flags must precede TICKER so a negative QUANTITY reaches validation as an argument.
	addCmd.Flags().SetInterspersed(false)
	addCmd.Flags().Bool("markdown", false, "render the report as formatted Markdown")
	analyzeCmd.Flags().Bool("markdown", false, "render the report as formatted Markdown")
	watchCmd.Flags().Bool("markdown", false, "render each report as formatted Markdown")
	historyCmd.Flags().Int("limit", 20, "number of runs to show")
	serveCmd.Flags().String("addr", "", "listen address (default from server.addr)")
}
