package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/alfredjeanlab/forge/internal/client"
	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// viewConfig is the JSON shape stored under "view:" config keys.
type viewConfig struct {
	Filter struct {
		Status    []string `json:"status,omitempty"`
		Framework []string `json:"framework,omitempty"`
		Labels    []string `json:"labels,omitempty"`
		Search    string   `json:"search,omitempty"`
		Priority  *int     `json:"priority,omitempty"`
	} `json:"filter"`
	Sort  string `json:"sort,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

var watchCmd = &cobra.Command{
	Use:     "watch [view-name]",
	Short:   "Watch for ideas matching a saved view (defaults to inbox)",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := "inbox"
		if len(args) == 1 {
			name = args[0]
		}
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		// 1. Fetch the view config.
		cfg, err := forgeClient.GetConfig(context.Background(), "view:"+name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		var vc viewConfig
		if err := json.Unmarshal(cfg.Value, &vc); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing view config: %v\n", err)
			os.Exit(1)
		}

		// 2. Build the ListIdeas request.
		req := &client.ListIdeasRequest{
			Status:    vc.Filter.Status,
			Framework: vc.Filter.Framework,
			Labels:    vc.Filter.Labels,
			Search:    vc.Filter.Search,
			Priority:  vc.Filter.Priority,
			Sort:      vc.Sort,
			Limit:     vc.Limit,
		}

		// 3. Setup signal handling.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		seen := make(map[string]time.Time)

		// 4. Initial query.
		if err := queryAndPrint(ctx, req, seen); err != nil {
			return err
		}
		if once {
			return nil
		}

		// 5. Choose event-driven or polling mode.
		natsURL := os.Getenv("FORGE_NATS_URL")
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL != "" {
			return watchNATS(ctx, natsURL, req, seen)
		}
		return watchPoll(ctx, interval, req, seen)
	},
}

// watchNATS subscribes to NATS events and re-queries on changes with debounce.
func watchNATS(ctx context.Context, natsURL string, req *client.ListIdeasRequest, seen map[string]time.Time) error {
	// reconnectCh receives a signal when the NATS client reconnects after
	// a disconnect, so we can immediately re-query for missed events.
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe("forge.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	// Drain the timer channel in case it fired between NewTimer and Stop.
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			// Only idea events can change the view's result set.
			if strings.HasPrefix(msg.Topic, "forge.idea.") {
				debounce.Reset(200 * time.Millisecond)
			}
		case <-reconnectCh:
			debounce.Reset(0) // immediate re-query
		case <-debounce.C:
			if err := queryAndPrint(ctx, req, seen); err != nil {
				return err
			}
		}
	}
}

// watchPoll polls for changes at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, req *client.ListIdeasRequest, seen map[string]time.Time) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := queryAndPrint(ctx, req, seen); err != nil {
			return err
		}
	}
}

// queryAndPrint calls ListIdeas, diffs against the seen map, and prints any changes.
func queryAndPrint(ctx context.Context, req *client.ListIdeasRequest, seen map[string]time.Time) error {
	resp, err := forgeClient.ListIdeas(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	changed := diffIdeas(resp.Ideas, seen)
	if len(changed) > 0 {
		if jsonOutput {
			printJSON(changed)
		} else {
			printIdeaListTable(changed, resp.Total)
		}
	}
	return nil
}

// diffIdeas compares ideas against the seen map and returns those that are new
// or have a different updated_at timestamp. It updates seen in place.
func diffIdeas(ideas []*model.Idea, seen map[string]time.Time) []*model.Idea {
	var changed []*model.Idea
	for _, i := range ideas {
		prev, ok := seen[i.ID]
		if !ok || !i.UpdatedAt.Equal(prev) {
			changed = append(changed, i)
		}
		seen[i.ID] = i.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after first poll")
}
