package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var listLimit int

// listCmd shows the audit history
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent audits, newest first",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum audits to show")
}

func runList(cmd *cobra.Command, args []string) error {
	ec, _, err := newClient()
	if err != nil {
		return err
	}

	entries, err := ec.ListAudits(context.Background(), listLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No audits yet")
		return nil
	}
	printList(entries)
	return nil
}
