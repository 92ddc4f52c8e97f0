package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Short:   "Update an idea (only changed flags are applied)",
	GroupID: "ideas",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &client.UpdateIdeaRequest{}

		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			req.Title = &v
		}
		if cmd.Flags().Changed("summary") {
			v, _ := cmd.Flags().GetString("summary")
			req.Summary = &v
		}
		if cmd.Flags().Changed("notes") {
			v, _ := cmd.Flags().GetString("notes")
			req.Notes = &v
		}
		if cmd.Flags().Changed("status") {
			v, _ := cmd.Flags().GetString("status")
			req.Status = &v
		}
		if cmd.Flags().Changed("priority") {
			v, _ := cmd.Flags().GetInt("priority")
			req.Priority = &v
		}
		if cmd.Flags().Changed("effort") {
			v, _ := cmd.Flags().GetInt("effort")
			req.Effort = &v
		}
		if cmd.Flags().Changed("impact") {
			v, _ := cmd.Flags().GetInt("impact")
			req.Impact = &v
		}
		if cmd.Flags().Changed("label") {
			v, _ := cmd.Flags().GetStringSlice("label")
			req.Labels = v
		}

		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		fieldsJSON, err := parseFields(fieldPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if fieldsJSON != nil {
			req.Fields = json.RawMessage(fieldsJSON)
		}

		idea, err := forgeClient.UpdateIdea(context.Background(), args[0], req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(idea)
		} else {
			printIdeaTable(idea)
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().String("title", "", "new title")
	updateCmd.Flags().StringP("summary", "s", "", "new summary")
	updateCmd.Flags().String("notes", "", "new notes")
	updateCmd.Flags().String("status", "", "new status (proposed, accepted, in_progress, shipped, rejected, archived)")
	updateCmd.Flags().IntP("priority", "p", 0, "new priority")
	updateCmd.Flags().Int("effort", 0, "new effort (0-5)")
	updateCmd.Flags().Int("impact", 0, "new impact (0-5)")
	updateCmd.Flags().StringSliceP("label", "l", nil, "replace the label set (repeatable)")
	updateCmd.Flags().StringArrayP("field", "f", nil, "typed field to merge (key=value, repeatable)")
}
