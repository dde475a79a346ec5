package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region session
func newSessionCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Run regulation sessions",
	}

	var source string
	start := o.intentCmd("start <preset>", "Start a session with calmNow, focusPrep or sleepDownshift", "startSession",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			return a.store.StartSession(ctx, scenario.PresetID(args[0]), source), nil
		})
	start.Flags().StringVar(&source, "source", "cli", "where the session was started from")

	tick := o.intentCmd("tick", "Advance the session timer once", "tick",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.Tick(ctx), nil
		})

	finish := o.intentCmd("finish", "End the routine early and move to check-in", "finishSessionEarly",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.FinishSessionEarly(ctx), nil
		})

	cancel := o.intentCmd("cancel", "Abandon the active session", "cancelSession",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.CancelSession(ctx), nil
		})

	var in struct {
		direction, helpfulness, quality string
		intensity, feel                  int
	}
	complete := o.intentCmd("complete", "Record how the session went", "completeSession",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			dir := delta.Direction(in.direction)
			if !dir.Valid() {
				return state.Decision{}, fmt.Errorf("invalid --direction %q (want better, same or worse)", in.direction)
			}
			help := delta.Helpfulness(in.helpfulness)
			if !help.Valid() {
				return state.Decision{}, fmt.Errorf("invalid --helpfulness %q (want yes, some or no)", in.helpfulness)
			}
			return a.store.CompleteSession(ctx, session.OutcomeInput{
				Direction:   dir,
				Intensity:   in.intensity,
				FeelRating:  in.feel,
				Helpfulness: help,
				Quality:     delta.Quality(in.quality),
			}), nil
		})
	complete.Flags().StringVar(&in.direction, "direction", string(delta.Same), "better, same or worse")
	complete.Flags().IntVar(&in.intensity, "intensity", 3, "how strong the change felt, 1-5")
	complete.Flags().IntVar(&in.feel, "feel", 3, "overall feel rating, 1-5")
	complete.Flags().StringVar(&in.helpfulness, "helpfulness", string(delta.HelpfulSome), "yes, some or no")
	complete.Flags().StringVar(&in.quality, "quality", string(delta.QualityEstimated), "live or estimated effect measurement")

	dismiss := o.intentCmd("dismiss-upsell", "Hide the post-session upgrade prompt", "dismissUpsell",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.DismissUpsell(ctx), nil
		})

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the session screen state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				screen := a.store.SessionScreen()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), screen)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", screen.Kind, screen.Info)
				if ss := a.store.ActiveSession(); ss != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s, planned %ds\n", ss.Preset, ss.State, ss.PlannedDurationSeconds)
				}
				return nil
			})
		},
	}

	cmd.AddCommand(start, tick, finish, cancel, complete, dismiss, show)
	return cmd
}

// #endregion session
