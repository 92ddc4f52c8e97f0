package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

// parseFields converts -f key=value pairs into a JSON object (bytes).
// Values that look like JSON (start with { [ " or are true/false/null/number)
// are embedded as-is; everything else is quoted as a string.
func parseFields(pairs []string) ([]byte, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	m := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := splitField(p)
		if !ok {
			return nil, fmt.Errorf("invalid field %q: expected key=value", p)
		}
		m[k] = rawOrString(v)
	}
	b, err := jsonMarshal(m)
	if err != nil {
		return nil, fmt.Errorf("encoding fields: %w", err)
	}
	return b, nil
}

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Short:   "Create a new idea",
	GroupID: "ideas",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title := args[0]

		summary, _ := cmd.Flags().GetString("summary")
		notes, _ := cmd.Flags().GetString("notes")
		priority, _ := cmd.Flags().GetInt("priority")
		effort, _ := cmd.Flags().GetInt("effort")
		impact, _ := cmd.Flags().GetInt("impact")
		framework, _ := cmd.Flags().GetString("framework")
		labels, _ := cmd.Flags().GetStringSlice("label")

		fieldPairs, _ := cmd.Flags().GetStringArray("field")
		fieldsJSON, err := parseFields(fieldPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		req := &client.CreateIdeaRequest{
			Title:     title,
			Summary:   summary,
			Notes:     notes,
			Priority:  priority,
			Effort:    effort,
			Impact:    impact,
			Framework: framework,
			Labels:    labels,
			Author:    actor,
			Fields:    fieldsJSON,
		}

		idea, err := forgeClient.CreateIdea(context.Background(), req)
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
	createCmd.Flags().StringP("summary", "s", "", "one-line summary")
	createCmd.Flags().String("notes", "", "longer notes")
	createCmd.Flags().IntP("priority", "p", 2, "idea priority")
	createCmd.Flags().Int("effort", 0, "rough implementation cost (0-5)")
	createCmd.Flags().Int("impact", 0, "expected payoff (0-5)")
	createCmd.Flags().String("framework", "", "framework of origin (django, express, fastapi, generic)")
	createCmd.Flags().StringSliceP("label", "l", nil, "labels (repeatable)")
	createCmd.Flags().StringArrayP("field", "f", nil, "typed field (key=value, repeatable)")
}
