package main

import (
	"context"

	"github.com/spf13/cobra"
)

// statusCmd prints one snapshot of an audit
var statusCmd = &cobra.Command{
	Use:   "status <audit-id>",
	Short: "Show the current state of an audit",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ec, _, err := newClient()
	if err != nil {
		return err
	}

	job, err := ec.GetAudit(context.Background(), args[0])
	if err != nil {
		return err
	}
	printJob(job)
	return nil
}
