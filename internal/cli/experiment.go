package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region experiment
func newExperimentCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "experiment",
		Short: "Plan, log and complete behavior experiments",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List experiments for the current scenario",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				exps := a.store.Experiments()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), exps)
				}
				now := time.Now()
				w := cmd.OutOrStdout()
				for _, e := range exps {
					fmt.Fprintf(w, "%-20s %-9s %d/%d days  adherence %d%%  %s\n",
						e.ID, e.Status, e.CheckInDaysCompleted, e.DurationDays, e.AdherencePercent(now), e.Title)
					if e.Result != nil {
						fmt.Fprintf(w, "    %s\n", e.Result.Summary)
					}
				}
				return nil
			})
		},
	}

	start := o.intentCmd("start <id>", "Start a planned experiment", "startExperiment",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			return a.store.StartExperiment(ctx, args[0]), nil
		})

	logDay := o.intentCmd("log", "Log today's check-in on the active experiment", "logExperimentDay",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.LogExperimentDay(ctx), nil
		})

	var note string
	complete := o.intentCmd("complete <perceived-change>", "Complete the active experiment with a change from -5 to 5", "completeExperiment",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			change, err := strconv.Atoi(args[0])
			if err != nil {
				return state.Decision{}, fmt.Errorf("parse perceived change: %w", err)
			}
			return a.store.CompleteExperiment(ctx, change, note), nil
		})
	complete.Flags().StringVar(&note, "note", "", "free-text note kept with the result")

	edit := o.intentCmd("edit <id> <summary...>", "Replace the summary of a completed experiment", "editExperimentSummary",
		cobra.MinimumNArgs(2), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			return a.store.EditExperimentSummary(ctx, args[0], strings.Join(args[1:], " ")), nil
		})

	cmd.AddCommand(list, start, logDay, complete, edit)
	return cmd
}

// #endregion experiment
