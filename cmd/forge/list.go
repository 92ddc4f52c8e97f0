package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List ideas with optional filters",
	GroupID: "ideas",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetStringSlice("status")
		framework, _ := cmd.Flags().GetStringSlice("framework")
		scanID, _ := cmd.Flags().GetString("scan")
		labels, _ := cmd.Flags().GetStringSlice("label")
		search, _ := cmd.Flags().GetString("search")
		sortBy, _ := cmd.Flags().GetString("sort")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		req := &client.ListIdeasRequest{
			Status:    status,
			Framework: framework,
			ScanID:    scanID,
			Labels:    labels,
			Search:    search,
			Sort:      sortBy,
			Limit:     limit,
			Offset:    offset,
		}
		if cmd.Flags().Changed("priority") {
			p, _ := cmd.Flags().GetInt("priority")
			req.Priority = &p
		}

		resp, err := forgeClient.ListIdeas(context.Background(), req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Ideas)
		} else {
			printIdeaListTable(resp.Ideas, resp.Total)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringSliceP("status", "s", nil, "filter by status (repeatable)")
	listCmd.Flags().StringSlice("framework", nil, "filter by framework (repeatable)")
	listCmd.Flags().String("scan", "", "filter by originating scan ID")
	listCmd.Flags().StringSliceP("label", "l", nil, "filter by label (repeatable)")
	listCmd.Flags().String("search", "", "full-text search on title and summary")
	listCmd.Flags().IntP("priority", "p", 0, "filter by exact priority")
	listCmd.Flags().String("sort", "", `sort order (e.g. "-priority", "created_at")`)
	listCmd.Flags().Int("limit", 50, "maximum results")
	listCmd.Flags().Int("offset", 0, "results offset")
}
