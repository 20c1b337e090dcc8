package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"kpiauditor/internal/client"
)

// cancelCmd stops a running audit
var cancelCmd = &cobra.Command{
	Use:   "cancel <audit-id>",
	Short: "Cancel a running audit",
	Long: `Cancel a running audit on the engine.

Cancelling an audit that already finished is not an error; the audit simply
keeps its final state.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	ec, _, err := newClient()
	if err != nil {
		return err
	}

	err = ec.CancelAudit(context.Background(), args[0])
	if errors.Is(err, client.ErrAlreadyTerminal) {
		fmt.Printf("Audit %s had already finished; nothing to cancel\n", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Audit %s cancelled\n", args[0])
	return nil
}
