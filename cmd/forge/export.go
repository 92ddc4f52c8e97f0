package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/spf13/cobra"
)

// exportRecord mirrors the JSONL line format used by the server-side sync
// exporter, so files produced here and by the scheduler are interchangeable.
type exportRecord struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

type exportHeader struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	IdeaCount   int       `json:"idea_count"`
	SpecCount   int       `json:"spec_count"`
	ConfigCount int       `json:"config_count"`
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Export ideas, specs, and configs as JSONL",
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		outPath, _ := cmd.Flags().GetString("output")

		var w io.Writer = os.Stdout
		if outPath != "" && outPath != "-" {
			f, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("creating output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		ctx := context.Background()

		ideasResp, err := forgeClient.ListIdeas(ctx, &client.ListIdeasRequest{Sort: "created_at"})
		if err != nil {
			return fmt.Errorf("listing ideas: %w", err)
		}

		specsResp, err := forgeClient.ListSpecs(ctx, 0, 0)
		if err != nil {
			return fmt.Errorf("listing specs: %w", err)
		}

		var configs []any
		for _, ns := range []string{"scan", "view"} {
			nsConfigs, err := forgeClient.ListConfigs(ctx, ns)
			if err != nil {
				return fmt.Errorf("listing %s configs: %w", ns, err)
			}
			for _, c := range nsConfigs {
				configs = append(configs, c)
			}
		}

		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)

		if err := enc.Encode(exportHeader{
			Version:     "1",
			Type:        "header",
			Timestamp:   time.Now().UTC(),
			IdeaCount:   len(ideasResp.Ideas),
			SpecCount:   len(specsResp.Specs),
			ConfigCount: len(configs),
		}); err != nil {
			return fmt.Errorf("encoding header: %w", err)
		}

		for _, i := range ideasResp.Ideas {
			// Fetch each idea individually to embed labels and comments.
			full, err := forgeClient.GetIdea(ctx, i.ID)
			if err != nil {
				return fmt.Errorf("fetching idea %s: %w", i.ID, err)
			}
			if err := enc.Encode(exportRecord{Type: "idea", Data: full}); err != nil {
				return fmt.Errorf("encoding idea %s: %w", i.ID, err)
			}
		}

		for _, s := range specsResp.Specs {
			if err := enc.Encode(exportRecord{Type: "spec", Data: s}); err != nil {
				return fmt.Errorf("encoding spec %s: %w", s.ID, err)
			}
		}

		for _, c := range configs {
			if err := enc.Encode(exportRecord{Type: "config", Data: c}); err != nil {
				return fmt.Errorf("encoding config: %w", err)
			}
		}

		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
}
