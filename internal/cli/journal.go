package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region scenario
func newScenarioCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [highStress|balanced|recovery]",
		Short: "Show or switch the demo scenario",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				if len(args) == 1 {
					return o.report(cmd, a, "selectScenario", a.store.SelectScenario(ctx, scenario.Scenario(args[0])))
				}
				current := a.store.Scenario()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), map[string]any{"current": current, "available": scenario.All})
				}
				for _, sc := range scenario.All {
					marker := " "
					if sc == current {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %-11s %s\n", marker, sc, a.catalog.Profile(sc).Title)
				}
				return nil
			})
		},
	}
}

// #endregion scenario

// #region journal
func newFastForwardCmd(o *rootOptions) *cobra.Command {
	return o.intentCmd("fastforward <days>", "Simulate days passing without intervention", "fastForward",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			days, err := strconv.Atoi(args[0])
			if err != nil {
				return state.Decision{}, fmt.Errorf("parse days: %w", err)
			}
			return a.store.FastForward(ctx, days), nil
		})
}

func newCheckInCmd(o *rootOptions) *cobra.Command {
	var note string
	cmd := o.intentCmd("checkin <load>", "Report your current load", "saveCheckIn",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			load, err := strconv.Atoi(args[0])
			if err != nil {
				return state.Decision{}, fmt.Errorf("parse load: %w", err)
			}
			return a.store.SaveCheckIn(ctx, load, note), nil
		})
	cmd.Flags().StringVar(&note, "note", "", "optional note stored with the check-in")
	return cmd
}

func newReflectCmd(o *rootOptions) *cobra.Command {
	return o.intentCmd("reflect <text...>", "Save a free-text reflection", "saveReflection",
		cobra.MinimumNArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			return a.store.SaveReflection(ctx, strings.Join(args, " ")), nil
		})
}

func newInsightCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insight",
		Short: "Keep short insights across scenarios",
	}
	add := o.intentCmd("add <text...>", "Save an insight", "saveInsight",
		cobra.MinimumNArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			return a.store.SaveInsight(ctx, strings.Join(args, " ")), nil
		})
	list := &cobra.Command{
		Use:   "list",
		Short: "List saved insights, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				insights := a.store.Insights()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), insights)
				}
				for i, text := range insights {
					fmt.Fprintf(cmd.OutOrStdout(), "%2d. %s\n", i+1, text)
				}
				return nil
			})
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

// #endregion journal

// #region progress
func newProgressCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Guided path, onboarding and KPI review markers",
	}
	advance := o.intentCmd("advance", "Advance the guided path one step", "advanceGuidedPath",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.AdvanceGuidedPath(ctx), nil
		})
	reset := o.intentCmd("reset", "Restart the guided path", "resetGuidedPath",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.ResetGuidedPath(ctx), nil
		})
	onboarding := o.intentCmd("onboarding <step>", "Record onboarding progress for the account", "setOnboardingStep",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			step, err := strconv.Atoi(args[0])
			if err != nil {
				return state.Decision{}, fmt.Errorf("parse step: %w", err)
			}
			return a.store.SetOnboardingStep(ctx, step), nil
		})
	kpi := o.intentCmd("kpi-reviewed", "Stamp the KPI review time", "markKPIReviewed",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.MarkKPIReviewed(ctx), nil
		})
	cmd.AddCommand(advance, reset, onboarding, kpi)
	return cmd
}

// #endregion progress
