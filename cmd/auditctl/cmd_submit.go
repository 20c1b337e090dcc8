package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"kpiauditor/internal/domain"
)

var submitWatch bool

// submitCmd starts a new audit
var submitCmd = &cobra.Command{
	Use:   "submit <college name>",
	Short: "Submit a new audit for a college",
	Long: `Submit a new audit for the named college.

The engine assigns an audit id and starts extracting KPIs in the background.
With --watch the command stays attached and prints progress until the audit
reaches a terminal state.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().BoolVarP(&submitWatch, "watch", "W", false, "Stay attached and print progress until done")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	collegeName := strings.TrimSpace(strings.Join(args, " "))

	ec, cfg, err := newClient()
	if err != nil {
		return err
	}

	if !submitWatch {
		id, err := ec.StartAudit(context.Background(), collegeName)
		if err != nil {
			return err
		}
		fmt.Printf("Audit %s started for %s\n", id, collegeName)
		fmt.Printf("Track it with: auditctl watch %s\n", id)
		return nil
	}

	done := make(chan *domain.AuditJob, 1)
	ctrl := newController(ec, cfg.Engine.PollInterval, func(job *domain.AuditJob) {
		done <- job
	})
	defer ctrl.Close()

	job, err := ctrl.Submit(context.Background(), collegeName)
	if err != nil {
		return err
	}
	fmt.Printf("Audit %s started for %s\n", job.ID, collegeName)
	return watchUntilTerminal(done)
}
