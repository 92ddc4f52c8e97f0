package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/spf13/cobra"
)

var specCmd = &cobra.Command{
	Use:     "spec",
	Short:   "Manage refactor specs",
	GroupID: "specs",
}

// readSpec loads a RefactorSpec from a JSON file, or stdin when path is "-".
func readSpec(path string) (*model.RefactorSpec, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading spec: %w", err)
	}

	var spec model.RefactorSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec JSON: %w", err)
	}
	return &spec, nil
}

var specCreateCmd = &cobra.Command{
	Use:   "create <file>",
	Short: "Create a refactor spec from a JSON file (use - for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if spec.CreatedBy == "" {
			spec.CreatedBy = actor
		}

		created, err := forgeClient.CreateSpec(context.Background(), spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(created)
		} else {
			printSpecTable(created)
		}
		return nil
	},
}

var specValidateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Validate a refactor spec without storing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		resp, err := forgeClient.ValidateSpec(context.Background(), spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp)
			if !resp.Valid {
				os.Exit(1)
			}
			return nil
		}

		if resp.Valid {
			fmt.Println("valid")
			return nil
		}
		for _, fe := range resp.Errors {
			fmt.Printf("%s: %s\n", fe.Field, fe.Message)
		}
		os.Exit(1)
		return nil
	},
}

var specShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a refactor spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := forgeClient.GetSpec(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(spec)
		} else {
			printSpecTable(spec)
		}
		return nil
	},
}

var specListCmd = &cobra.Command{
	Use:   "list",
	Short: "List refactor specs",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		resp, err := forgeClient.ListSpecs(context.Background(), limit, offset)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(resp.Specs)
		} else {
			printSpecListTable(resp.Specs, resp.Total)
		}
		return nil
	},
}

var specUpdateCmd = &cobra.Command{
	Use:   "update <id> <file>",
	Short: "Replace a refactor spec from a JSON file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := readSpec(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		updated, err := forgeClient.UpdateSpec(context.Background(), args[0], spec)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(updated)
		} else {
			printSpecTable(updated)
		}
		return nil
	},
}

var specDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a refactor spec",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := forgeClient.DeleteSpec(context.Background(), args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("deleted %s\n", args[0])
		return nil
	},
}

func init() {
	specListCmd.Flags().Int("limit", 50, "maximum results")
	specListCmd.Flags().Int("offset", 0, "results offset")

	specCmd.AddCommand(specCreateCmd)
	specCmd.AddCommand(specValidateCmd)
	specCmd.AddCommand(specShowCmd)
	specCmd.AddCommand(specListCmd)
	specCmd.AddCommand(specUpdateCmd)
	specCmd.AddCommand(specDeleteCmd)
}
