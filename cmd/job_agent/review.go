package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-agent/internal/observability"
	"github.com/jonathan/job-agent/internal/types"
)

var reviewCommand = &cobra.Command{
	Use:   "review",
	Short: "Review ambiguous matches and inspect tracked jobs",
	RunE:  reviewListCmd,
}

var reviewApproveCommand = &cobra.Command{
	Use:   "approve <source-id>",
	Short: "Approve a needs-review record for application",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewApproveCmd,
}

var reviewRejectCommand = &cobra.Command{
	Use:   "reject <source-id>",
	Short: "Reject a needs-review record",
	Args:  cobra.ExactArgs(1),
	RunE:  reviewRejectCmd,
}

var reviewJobsCommand = &cobra.Command{
	Use:   "jobs",
	Short: "List tracked jobs with their status and attempt history",
	RunE:  reviewJobsCmd,
}

var (
	reviewStateFlag   string
	reviewVersionFlag int
)

func init() {
	reviewJobsCommand.Flags().StringVar(&reviewStateFlag, "state", "", "Only list records in this state")
	reviewApproveCommand.Flags().IntVar(&reviewVersionFlag, "version", 0, "Profile version the record belongs to (default: latest)")
	reviewRejectCommand.Flags().IntVar(&reviewVersionFlag, "version", 0, "Profile version the record belongs to (default: latest)")

	reviewCommand.AddCommand(reviewApproveCommand)
	reviewCommand.AddCommand(reviewRejectCommand)
	reviewCommand.AddCommand(reviewJobsCommand)
	rootCmd.AddCommand(reviewCommand)
}

func reviewListCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	latest, err := a.profiles.Latest(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}
	records, err := a.ledger.ListByState(ctx, a.cfg.UserID, latest.Version, types.StateNeedsReview)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("Nothing waiting for review.")
		return nil
	}

	fmt.Printf("%d record(s) waiting for review:\n\n", len(records))
	printer := observability.NewPrinter(os.Stdout)
	for _, record := range records {
		printer.PrintRecord(record)
	}
	fmt.Println("Approve with 'job_agent review approve <source-id>', reject with 'job_agent review reject <source-id>'.")
	return nil
}

func reviewApproveCmd(_ *cobra.Command, args []string) error {
	return reviewDecide(args[0], true)
}

func reviewRejectCmd(_ *cobra.Command, args []string) error {
	return reviewDecide(args[0], false)
}

func reviewDecide(sourceID string, approve bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	version := reviewVersionFlag
	if version == 0 {
		latest, err := a.profiles.Latest(ctx, a.cfg.UserID)
		if err != nil {
			return err
		}
		version = latest.Version
	}

	if approve {
		record, err := a.orchestrator.Approve(ctx, a.cfg.UserID, version, sourceID)
		if err != nil {
			return err
		}
		fmt.Printf("%s approved; it will be applied to in the next cycle.\n", record.SourceID)
		return nil
	}
	record, err := a.orchestrator.Reject(ctx, a.cfg.UserID, version, sourceID)
	if err != nil {
		return err
	}
	fmt.Printf("%s rejected.\n", record.SourceID)
	return nil
}

func reviewJobsCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.ledger.ListAllVersions(ctx, a.cfg.UserID)
	if err != nil {
		return err
	}

	if reviewStateFlag != "" {
		state, err := types.ParseJobState(reviewStateFlag)
		if err != nil {
			return err
		}
		filtered := records[:0]
		for _, record := range records {
			if record.State == state {
				filtered = append(filtered, record)
			}
		}
		records = filtered
	}

	if len(records) == 0 {
		fmt.Println("No tracked jobs.")
		return nil
	}
	printer := observability.NewPrinter(os.Stdout)
	for _, record := range records {
		printer.PrintRecord(record)
	}
	return nil
}
