package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:     "scan",
	Short:   "Manage codebase scans",
	GroupID: "scans",
}

var scanEnqueueCmd = &cobra.Command{
	Use:     "enqueue <type> <root>",
	Aliases: []string{"run"},
	Short:   "Queue a scan of a source tree (types: routes, models, deps, todo, census)",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := filepath.Abs(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		framework, _ := cmd.Flags().GetString("framework")

		scan, err := forgeClient.EnqueueScan(context.Background(), &client.EnqueueScanRequest{
			Type:      args[0],
			Framework: framework,
			Root:      root,
			CreatedBy: actor,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(scan)
		} else {
			printScanTable(scan)
		}
		return nil
	},
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		scanType, _ := cmd.Flags().GetStringSlice("type")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := forgeClient.ListScans(context.Background(), &client.ListScansRequest{
			Status: status,
			Type:   scanType,
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Scans)
		} else {
			printScanListTable(resp.Scans, resp.Total)
		}
		return nil
	},
}

var scanShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scan, err := forgeClient.GetScan(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(scan)
		} else {
			printScanTable(scan)
		}
		return nil
	},
}

var scanCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a pending scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scan, err := forgeClient.CancelScan(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("canceled %s\n", scan.ID)
		return nil
	},
}

var scanFindingsCmd = &cobra.Command{
	Use:   "findings <id>",
	Short: "List findings produced by a scan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		findings, err := forgeClient.GetFindings(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(findings)
		} else {
			printFindingsTable(findings)
		}
		return nil
	},
}

func init() {
	scanEnqueueCmd.Flags().String("framework", "", "adapter to use (django, express, fastapi, generic); empty = auto-detect")

	scanListCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	scanListCmd.Flags().StringSliceP("type", "t", nil, "filter by scan type (repeatable)")
	scanListCmd.Flags().Int("limit", 50, "maximum results")
	scanListCmd.Flags().Int("offset", 0, "results offset")

	scanCmd.AddCommand(scanEnqueueCmd)
	scanCmd.AddCommand(scanListCmd)
	scanCmd.AddCommand(scanShowCmd)
	scanCmd.AddCommand(scanCancelCmd)
	scanCmd.AddCommand(scanFindingsCmd)
}
