package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:     "search <query>",
	Short:   "Full-text search across idea titles and summaries",
	GroupID: "ideas",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		resp, err := forgeClient.ListIdeas(context.Background(), &client.ListIdeasRequest{
			Search: args[0],
			Limit:  limit,
		})
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
	searchCmd.Flags().Int("limit", 50, "maximum results")
}
