package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var acceptCmd = &cobra.Command{
	Use:     "accept <id>",
	Short:   "Accept a proposed idea",
	GroupID: "ideas",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idea, err := forgeClient.AcceptIdea(context.Background(), args[0], actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(idea)
		} else {
			fmt.Printf("accepted %s (%s)\n", idea.ID, idea.Title)
		}
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:     "reject <id>",
	Short:   "Reject a proposed idea",
	GroupID: "ideas",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		idea, err := forgeClient.RejectIdea(context.Background(), args[0], actor)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(idea)
		} else {
			fmt.Printf("rejected %s (%s)\n", idea.ID, idea.Title)
		}
		return nil
	},
}
