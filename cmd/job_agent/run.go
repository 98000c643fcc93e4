package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/orchestrator"
	"github.com/jonathan/job-agent/internal/profile"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one discovery cycle",
	Long: `Runs one full discovery cycle for the latest confirmed profile:
scrape every configured source, score the findings, record them in the
ledger and (with auto-apply enabled) submit applications for matches.`,
	RunE: runCycleCmd,
}

func init() {
	rootCmd.AddCommand(runCommand)
}

func runCycleCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	return runOneCycle(ctx, a)
}

// runOneCycle executes a discovery cycle for the latest confirmed profile.
// A quota pause is reported but is not a command failure.
func runOneCycle(ctx context.Context, a *app) error {
	latest, err := a.profiles.Latest(ctx, a.cfg.UserID)
	if err != nil {
		var notFound *profile.NotFoundError
		if errors.As(err, &notFound) {
			return fmt.Errorf("no profile for user %q; create one with 'job_agent profile intake'", a.cfg.UserID)
		}
		return err
	}
	if !latest.Confirmed() {
		return fmt.Errorf("profile v%d is not confirmed; confirm it with 'job_agent profile confirm'", latest.Version)
	}

	_, err = a.orchestrator.RunCycle(ctx, *latest)
	var paused *orchestrator.QuotaPausedError
	if errors.As(err, &paused) {
		return nil
	}
	return err
}
