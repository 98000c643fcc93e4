package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var watchCommand = &cobra.Command{
	Use:   "watch",
	Short: "Run discovery cycles on a recurring schedule",
	Long: `Keeps the agent running and triggers a discovery cycle on a cron
schedule (JOB_AGENT_WATCH_SCHEDULE, default every six hours). An immediate
cycle runs on startup. Stop with Ctrl-C.`,
	RunE: watchCmd,
}

func init() {
	rootCmd.AddCommand(watchCommand)
}

func watchCmd(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	runErrLogged := func() {
		if err := runOneCycle(ctx, a); err != nil && ctx.Err() == nil {
			log.Printf("cycle failed: %v", err)
		}
	}

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(a.cfg.Watch.Schedule, runErrLogged); err != nil {
		return fmt.Errorf("invalid watch schedule %q: %w", a.cfg.Watch.Schedule, err)
	}

	log.Printf("watching on schedule %q", a.cfg.Watch.Schedule)
	runErrLogged()
	scheduler.Start()

	<-ctx.Done()
	stopCtx := scheduler.Stop()
	<-stopCtx.Done()
	return nil
}
