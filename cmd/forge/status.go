package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show workspace overview with idea and scan counts",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := forgeClient.GetStats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(stats)
			return nil
		}

		fmt.Println("Ideas")
		fmt.Printf("  Proposed:    %d\n", stats.IdeasProposed)
		fmt.Printf("  Accepted:    %d\n", stats.IdeasAccepted)
		fmt.Printf("  In Progress: %d\n", stats.IdeasInProgress)
		fmt.Printf("  Shipped:     %d\n", stats.IdeasShipped)
		fmt.Printf("  Rejected:    %d\n", stats.IdeasRejected)
		fmt.Println("Scans")
		fmt.Printf("  Pending:     %d\n", stats.ScansPending)
		fmt.Printf("  Running:     %d\n", stats.ScansRunning)
		fmt.Printf("  Completed:   %d\n", stats.ScansCompleted)
		fmt.Printf("  Failed:      %d\n", stats.ScansFailed)
		return nil
	},
}
