package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region output
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type decisionOutput struct {
	Intent   string          `json:"intent"`
	Action   state.Action    `json:"action"`
	Reason   string          `json:"reason"`
	Metrics  metric.Snapshot `json:"metrics"`
	DemoDay  int             `json:"demoDay"`
	Banner   string          `json:"banner,omitempty"`
	Problems string          `json:"dataIssue,omitempty"`
}

// report prints the decision of one intent followed by the resulting metrics.
func (o *rootOptions) report(cmd *cobra.Command, a *app, intent string, d state.Decision) error {
	out := decisionOutput{
		Intent:  intent,
		Action:  d.Action,
		Reason:  d.Reason,
		Metrics: a.store.Metrics(),
		DemoDay: a.store.DemoDay(),
	}
	if b := a.store.Banner(); b != nil {
		out.Banner = b.Message
	}
	if issue := a.store.DataIssue(); issue != nil {
		out.Problems = issue.Message
	}
	if o.jsonOut {
		return writeJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s: %s (%s)\n", intent, out.Action, out.Reason)
	fmt.Fprintf(w, "day %d  %s\n", out.DemoDay, out.Metrics)
	if out.Banner != "" {
		fmt.Fprintf(w, "banner: %s\n", out.Banner)
	}
	if out.Problems != "" {
		fmt.Fprintf(w, "warning: %s\n", out.Problems)
	}
	return nil
}

// intentCmd builds a leaf command that runs a single intent and reports it.
func (o *rootOptions) intentCmd(use, short, intent string, args cobra.PositionalArgs, run func(ctx context.Context, a *app, args []string) (state.Decision, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, argv []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				d, err := run(ctx, a, argv)
				if err != nil {
					return err
				}
				return o.report(cmd, a, intent, d)
			})
		},
	}
}

// #endregion output
