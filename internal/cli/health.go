package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region health
func newHealthCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Inspect and control the simulated health signal bridge",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show data quality, timeline and episodes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				p := a.store.Health()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), struct {
						Screen  state.ScreenState `json:"screen"`
						Profile health.Profile    `json:"profile"`
					}{a.store.HealthScreen(), p})
				}
				printHealth(cmd, a.store.HealthScreen(), p)
				return nil
			})
		},
	}

	refresh := o.intentCmd("refresh", "Re-derive quality and timeline", "refreshHealth",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.RefreshHealth(ctx), nil
		})
	rebuild := o.intentCmd("rebuild", "Regenerate episodes from the scenario seed", "rebuildHealth",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.RebuildHealth(ctx), nil
		})
	clearDerived := o.intentCmd("clear", "Delete derived episodes and timeline", "deleteDerivedHealth",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.DeleteDerivedHealth(ctx), nil
		})
	connect := o.intentCmd("connect", "Connect the device bridge", "setHealthConnected",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.SetHealthConnected(ctx, true), nil
		})
	disconnect := o.intentCmd("disconnect", "Disconnect the device bridge", "setHealthConnected",
		cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (state.Decision, error) {
			return a.store.SetHealthConnected(ctx, false), nil
		})

	var (
		tags        []string
		note        string
		attribution string
	)
	episode := o.intentCmd("episode <id>", "Annotate a stress episode", "saveEpisodeContext",
		cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			c := health.EpisodeContext{Tags: tags}
			if note != "" {
				c.Note = &note
			}
			if attribution != "" {
				attr := health.Attribution(attribution)
				switch attr {
				case health.AttributionConfirmed, health.AttributionAdjusted, health.AttributionRejected:
				default:
					return state.Decision{}, fmt.Errorf("invalid --attribution %q (want confirmed, adjusted or rejected)", attribution)
				}
				c.Attribution = &attr
			}
			return a.store.SaveEpisodeContext(ctx, args[0], c), nil
		})
	episode.Flags().StringSliceVar(&tags, "tag", nil, "tag to attach (repeatable)")
	episode.Flags().StringVar(&note, "note", "", "note to attach")
	episode.Flags().StringVar(&attribution, "attribution", "", "confirmed, adjusted or rejected")

	permission := o.intentCmd("permission <signal> <granted|missing>", "Change one signal permission", "setHealthPermission",
		cobra.ExactArgs(2), func(ctx context.Context, a *app, args []string) (state.Decision, error) {
			status := health.PermissionStatus(args[1])
			if status != health.Granted && status != health.Missing {
				return state.Decision{}, fmt.Errorf("invalid permission status %q (want granted or missing)", args[1])
			}
			return a.store.SetHealthPermission(ctx, health.SignalType(args[0]), status), nil
		})

	cmd.AddCommand(show, refresh, rebuild, clearDerived, connect, disconnect, episode, permission)
	return cmd
}

func printHealth(cmd *cobra.Command, screen state.ScreenState, p health.Profile) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "screen: %s", screen.Kind)
	if screen.Info != "" {
		fmt.Fprintf(w, " (%s)", screen.Info)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "source: %s  connected: %t\n", p.Sync.Source, p.Connected)
	if p.Sync.LastSyncAt != nil {
		fmt.Fprintf(w, "last sync: %s\n", p.Sync.LastSyncAt.Format("2006-01-02 15:04"))
	}
	q := p.Quality
	fmt.Fprintf(w, "quality %d: sleep %d  heart rate %d  hrv %d  wear %d\n",
		q.Score, q.SleepCoverage, q.HeartRateDensity, q.HRVAvailability, q.WatchWear)
	fmt.Fprintf(w, "hint: %s\n", q.ActionHint)
	for _, seg := range p.Timeline {
		fmt.Fprintf(w, "  %s %s\n", seg.Start.Format("15:04"), seg.State)
	}
	for _, ep := range p.Episodes {
		fmt.Fprintf(w, "episode %s  %s-%s  intensity %.2f  %s -> %s\n",
			ep.ID, ep.Start.Format("15:04"), ep.End.Format("15:04"), ep.Intensity, ep.Driver, ep.RecommendedPreset)
	}
	for _, perm := range p.Permissions {
		fmt.Fprintf(w, "  %-18s %s\n", perm.Signal, perm.Status)
	}
}

// #endregion health
