package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:     "events <entity-id>",
	Short:   "List recorded events for an idea, scan, or spec",
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := forgeClient.GetEvents(context.Background(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			printJSON(events)
			return nil
		}

		if len(events) == 0 {
			fmt.Println("no events")
			return nil
		}
		for _, e := range events {
			payload, _ := json.Marshal(json.RawMessage(e.Payload))
			fmt.Printf("[%s] %s %s\n", e.CreatedAt.Format(timeFormat), e.Topic, payload)
		}
		return nil
	},
}
