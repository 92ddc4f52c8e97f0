package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/alfredjeanlab/forge/internal/model"
)

const timeFormat = "2006-01-02 15:04:05"

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printIdeaTable(idea *model.Idea) {
	fmt.Printf("ID:        %s\n", idea.ID)
	fmt.Printf("Title:     %s\n", idea.Title)
	fmt.Printf("Status:    %s\n", idea.Status)
	fmt.Printf("Priority:  %d\n", idea.Priority)
	fmt.Printf("Effort:    %d\n", idea.Effort)
	fmt.Printf("Impact:    %d\n", idea.Impact)
	if idea.Framework != "" {
		fmt.Printf("Framework: %s\n", idea.Framework)
	}
	if idea.ScanID != "" {
		fmt.Printf("Scan:      %s\n", idea.ScanID)
	}
	if idea.Summary != "" {
		fmt.Printf("Summary:   %s\n", idea.Summary)
	}
	if idea.Notes != "" {
		fmt.Printf("Notes:     %s\n", idea.Notes)
	}
	if len(idea.Labels) > 0 {
		fmt.Printf("Labels:    %s\n", strings.Join(idea.Labels, ", "))
	}
	if idea.Author != "" {
		fmt.Printf("Author:    %s\n", idea.Author)
	}
	fmt.Printf("Created:   %s\n", idea.CreatedAt.Format(timeFormat))
	fmt.Printf("Updated:   %s\n", idea.UpdatedAt.Format(timeFormat))
	if idea.DecidedAt != nil {
		fmt.Printf("Decided:   %s by %s\n", idea.DecidedAt.Format(timeFormat), idea.DecidedBy)
	}
	for _, c := range idea.Comments {
		fmt.Printf("Comment:   [%s] %s: %s\n", c.CreatedAt.Format(timeFormat), c.Author, c.Text)
	}
}

func printIdeaListTable(ideas []*model.Idea, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tPRIORITY\tFRAMEWORK\tTITLE")
	for _, i := range ideas {
		title := i.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", i.ID, i.Status, i.Priority, i.Framework, title)
	}
	w.Flush()
	fmt.Printf("\n%d ideas (%d total)\n", len(ideas), total)
}

func printScanTable(scan *model.ScanJob) {
	fmt.Printf("ID:        %s\n", scan.ID)
	fmt.Printf("Type:      %s\n", scan.Type)
	if scan.Framework != "" {
		fmt.Printf("Framework: %s\n", scan.Framework)
	}
	fmt.Printf("Root:      %s\n", scan.Root)
	fmt.Printf("Status:    %s\n", scan.Status)
	if scan.Error != "" {
		fmt.Printf("Error:     %s\n", scan.Error)
	}
	if scan.CreatedBy != "" {
		fmt.Printf("Created By: %s\n", scan.CreatedBy)
	}
	fmt.Printf("Created:   %s\n", scan.CreatedAt.Format(timeFormat))
	if scan.StartedAt != nil {
		fmt.Printf("Started:   %s\n", scan.StartedAt.Format(timeFormat))
	}
	if scan.EndedAt != nil {
		fmt.Printf("Ended:     %s\n", scan.EndedAt.Format(timeFormat))
	}
	fmt.Printf("Findings:  %d\n", scan.Findings)
	fmt.Printf("Ideas:     %d\n", scan.Ideas)
}

func printScanListTable(scans []*model.ScanJob, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTYPE\tSTATUS\tFRAMEWORK\tFINDINGS\tROOT")
	for _, s := range scans {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", s.ID, s.Type, s.Status, s.Framework, s.Findings, s.Root)
	}
	w.Flush()
	fmt.Printf("\n%d scans (%d total)\n", len(scans), total)
}

func printFindingsTable(findings []*model.Finding) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tFILE\tLINE\tSYMBOL\tDETAIL")
	for _, f := range findings {
		detail := f.Detail
		if len(detail) > 60 {
			detail = detail[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", f.Kind, f.File, f.Line, f.Symbol, detail)
	}
	w.Flush()
	fmt.Printf("\n%d findings\n", len(findings))
}

func printSpecTable(spec *model.RefactorSpec) {
	fmt.Printf("ID:          %s\n", spec.ID)
	fmt.Printf("Name:        %s\n", spec.Name)
	fmt.Printf("Version:     %s\n", spec.Version)
	if spec.Description != "" {
		fmt.Printf("Description: %s\n", spec.Description)
	}
	fmt.Printf("Target:      %s", spec.Target.Path)
	if spec.Target.Symbol != "" {
		fmt.Printf(" (%s %s)", spec.Target.Kind, spec.Target.Symbol)
	}
	fmt.Println()
	for _, op := range spec.Operations {
		if len(op.Args) > 0 {
			args, _ := json.Marshal(op.Args)
			fmt.Printf("Operation:   %s %s\n", op.Kind, args)
		} else {
			fmt.Printf("Operation:   %s\n", op.Kind)
		}
	}
	if spec.IdeaID != "" {
		fmt.Printf("Idea:        %s\n", spec.IdeaID)
	}
	fmt.Printf("Created:     %s\n", spec.CreatedAt.Format(timeFormat))
}

func printSpecListTable(specs []*model.RefactorSpec, total int) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tOPS\tTARGET\tIDEA")
	for _, s := range specs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", s.ID, s.Name, len(s.Operations), s.Target.Path, s.IdeaID)
	}
	w.Flush()
	fmt.Printf("\n%d specs (%d total)\n", len(specs), total)
}

func printConfig(c *model.Config) {
	// Unmarshal the value so it renders as JSON, not an escaped string.
	var valueObj any
	_ = json.Unmarshal(c.Value, &valueObj)
	printJSON(map[string]any{"key": c.Key, "value": valueObj})
}
