package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:     "comment",
	Short:   "Manage idea comments",
	GroupID: "ideas",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <id> <text>",
	Short: "Add a comment to an idea",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		comment, err := forgeClient.AddComment(context.Background(), args[0], actor, args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(comment)
		} else {
			fmt.Printf("comment added to %s\n", comment.IdeaID)
		}
		return nil
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "List comments on an idea",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comments, err := forgeClient.GetComments(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if jsonOutput {
			printJSON(comments)
			return nil
		}
		if len(comments) == 0 {
			fmt.Println("no comments")
			return nil
		}
		for _, c := range comments {
			fmt.Printf("[%s] %s: %s\n", c.CreatedAt.Format(timeFormat), c.Author, c.Text)
		}
		return nil
	},
}

func init() {
	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentListCmd)
}
