package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"kpiauditor/internal/domain"
)

// watchCmd attaches to a running audit
var watchCmd = &cobra.Command{
	Use:   "watch <audit-id>",
	Short: "Attach to an audit and print progress until it finishes",
	Args:  cobra.ExactArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ec, cfg, err := newClient()
	if err != nil {
		return err
	}

	done := make(chan *domain.AuditJob, 1)
	ctrl := newController(ec, cfg.Engine.PollInterval, func(job *domain.AuditJob) {
		done <- job
	})
	defer ctrl.Close()

	job, err := ctrl.LoadExisting(context.Background(), args[0])
	if err != nil {
		return err
	}
	printProgress(job)
	if job.Status.Terminal() {
		printJob(job)
		return nil
	}
	return watchUntilTerminal(done)
}

// watchUntilTerminal blocks until the tracked audit reaches a terminal state
// or the user interrupts. Interrupting detaches; it does not cancel the audit.
func watchUntilTerminal(done <-chan *domain.AuditJob) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case job := <-done:
		fmt.Println()
		printJob(job)
		if job.Status == domain.StatusFailed {
			return fmt.Errorf("audit failed: %s", job.ProgressMessage)
		}
		return nil
	case <-quit:
		fmt.Println("\nDetached. The audit keeps running on the engine.")
		return nil
	}
}
