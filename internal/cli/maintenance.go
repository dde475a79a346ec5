package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region repair
func newRepairCmd(o *rootOptions) *cobra.Command {
	return o.intentCmd("repair", "Reset entities that failed to load to their defaults", "repair",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.Repair(ctx), nil
		})
}

// #endregion repair

// #region inspect
func newInspectCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "List persisted keys with size, envelope version and decode status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				statuses, err := a.adapter.Inspect(ctx)
				if err != nil {
					return fmt.Errorf("inspect store: %w", err)
				}
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), statuses)
				}
				w := cmd.OutOrStdout()
				if len(statuses) == 0 {
					fmt.Fprintln(w, "no keys found")
					return nil
				}
				fmt.Fprintf(w, "%-44s %8s %4s  %s\n", "KEY", "BYTES", "VER", "STATUS")
				for _, s := range statuses {
					fmt.Fprintf(w, "%-44s %8d %4d  %s", s.Key, s.Bytes, s.Version, s.Status)
					if s.Error != "" {
						fmt.Fprintf(w, " (%s)", s.Error)
					}
					fmt.Fprintln(w)
				}
				return nil
			})
		},
	}
}

// #endregion inspect

// #region audit
func newAuditCmd(o *rootOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent intents and their decisions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if a.audit == nil {
					return errAuditUnavailable
				}
				entries, err := a.audit.Recent(ctx, limit)
				if err != nil {
					return err
				}
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), entries)
				}
				w := cmd.OutOrStdout()
				for _, e := range entries {
					fmt.Fprintf(w, "%s  %-22s %-7s %s\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Intent, e.Decision, e.Reason)
					if e.Metrics != "" {
						fmt.Fprintf(w, "%21s%s\n", "", e.Metrics)
					}
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "number of entries to show")
	return cmd
}

// #endregion audit

// #region analytics
func newAnalyticsCmd(o *rootOptions) *cobra.Command {
	var last int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show the persisted analytics log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				events := a.events.Events()
				if last > 0 && len(events) > last {
					events = events[len(events)-last:]
				}
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), events)
				}
				w := cmd.OutOrStdout()
				total := a.events.Events()
				fmt.Fprintf(w, "%d events, %d bytes (cap %d events / %d bytes)\n",
					len(total), analytics.EncodedSize(total), analytics.MaxEvents, analytics.MaxBytes)
				for _, e := range events {
					fmt.Fprintf(w, "%s  %-26s %v\n", e.Timestamp.Format("2006-01-02 15:04:05"), e.Name, e.Metadata)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&last, "last", 20, "number of newest events to show (0 for all)")
	return cmd
}

// #endregion analytics
