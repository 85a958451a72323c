package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/groblegark/beadviz/internal/events"
	"github.com/groblegark/beadviz/internal/model"
	"github.com/groblegark/beadviz/internal/tracker"
	"github.com/groblegark/beadviz/internal/ui"
)

// eventDebounce is how long watch waits after a burst of bus events before
// re-querying the tracker.
const eventDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow issue changes, re-querying on tracker events",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		gw := newGateway()
		seen := make(map[string]time.Time)

		requery := func() error { return printChangedIssues(ctx, gw, seen) }
		if err := requery(); err != nil {
			return err
		}
		if once {
			return nil
		}

		// Event-driven when a bus is configured, polling otherwise.
		natsURL := os.Getenv("BEADVIZ_NATS_URL")
		if natsURL == "" {
			return watchPoll(ctx, interval, requery)
		}

		// reconnected is signaled when the NATS client comes back after a
		// disconnect, so missed events are covered by an immediate re-query.
		reconnected := make(chan struct{}, 1)
		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
				select {
				case reconnected <- struct{}{}:
				default:
				}
			}),
		)
		if err != nil {
			return err
		}
		defer sub.Close()

		return watchEvents(ctx, sub, reconnected, eventDebounce, requery)
	},
}

// watchEvents re-queries once each burst of bus events settles. It returns
// when ctx is done or the subscription channel closes.
func watchEvents(ctx context.Context, sub events.Subscriber, reconnected <-chan struct{}, debounce time.Duration, requery func() error) error {
	ch, cancel, err := sub.Subscribe("beadviz.>")
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			timer.Reset(debounce)
		case <-reconnected:
			timer.Reset(0)
		case <-timer.C:
			if err := requery(); err != nil {
				return err
			}
		}
	}
}

// watchPoll re-queries at a fixed interval.
func watchPoll(ctx context.Context, interval time.Duration, requery func() error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := requery(); err != nil {
			return err
		}
	}
}

// printChangedIssues lists issues and prints the ones that are new or
// updated since the last call. seen is updated in place.
func printChangedIssues(ctx context.Context, gw tracker.Gateway, seen map[string]time.Time) error {
	issues, err := gw.ListIssues(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	changed := diffIssues(issues, seen)
	if len(changed) == 0 {
		return nil
	}

	if jsonOutput {
		return printJSON(changed)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, iss := range changed {
		status := string(iss.Status)
		switch iss.Status {
		case model.StatusClosed:
			status = ui.RenderMuted(status)
		case model.StatusInProgress:
			status = ui.RenderAccent(status)
		case model.StatusOpen:
			status = ui.RenderOK(status)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", ui.RenderAccent(iss.ID), status, iss.Title)
	}
	return w.Flush()
}

// diffIssues returns the issues that are new or carry a different
// updated_at than last observed, updating seen in place.
func diffIssues(issues []*model.Issue, seen map[string]time.Time) []*model.Issue {
	var changed []*model.Issue
	for _, iss := range issues {
		prev, ok := seen[iss.ID]
		if !ok || !iss.UpdatedAt.Equal(prev) {
			changed = append(changed, iss)
		}
		seen[iss.ID] = iss.UpdatedAt
	}
	return changed
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval when no event bus is configured")
	watchCmd.Flags().Bool("once", false, "exit after the first query")
}
