package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/recommend"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/signals"
)

// #region status
type statusOutput struct {
	Scenario       scenario.Scenario        `json:"scenario"`
	DemoDay        int                      `json:"demoDay"`
	Metrics        metric.Snapshot          `json:"metrics"`
	SinceCheckIn   *metric.Delta            `json:"sinceCheckIn,omitempty"`
	Signals        signals.Counts           `json:"signals"`
	Recommendation recommend.Recommendation `json:"recommendation"`
	ActiveSession  *session.Session         `json:"activeSession,omitempty"`
	Sessions       int                      `json:"sessions"`
	Insights       int                      `json:"insights"`
	GuidedStep     int                      `json:"guidedStep"`
	UpsellPending  bool                     `json:"upsellPending"`
	DataIssue      string                   `json:"dataIssue,omitempty"`
}

func newStatusCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show scenario, metrics and the current recommendation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				s := a.store
				out := statusOutput{
					Scenario:       s.Scenario(),
					DemoDay:        s.DemoDay(),
					Metrics:        s.Metrics(),
					Signals:        s.Signals(),
					Recommendation: s.Recommendation(),
					ActiveSession:  s.ActiveSession(),
					Sessions:       len(s.Sessions()),
					Insights:       len(s.Insights()),
					GuidedStep:     s.GuidedStep(),
					UpsellPending:  s.UpsellPending(),
				}
				if d, ok := s.DeltaSinceCheckIn(); ok {
					out.SinceCheckIn = &d
				}
				if issue := s.DataIssue(); issue != nil {
					out.DataIssue = issue.Message
				}
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), out)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "scenario: %s (day %d)\n", out.Scenario, out.DemoDay)
				fmt.Fprintf(w, "metrics:  %s\n", out.Metrics)
				if out.SinceCheckIn != nil {
					fmt.Fprintf(w, "since check-in: %s\n", out.SinceCheckIn)
				}
				fmt.Fprintf(w, "signals:  stress=%d recovery=%d caffeine=%d\n", out.Signals.Stress, out.Signals.Recovery, out.Signals.Caffeine)
				fmt.Fprintf(w, "next:     %s (%s)\n", out.Recommendation.Preset, out.Recommendation.What)
				if out.ActiveSession != nil {
					fmt.Fprintf(w, "session:  %s %s\n", out.ActiveSession.Preset, out.ActiveSession.State)
				}
				fmt.Fprintf(w, "sessions: %d  insights: %d  guided step: %d\n", out.Sessions, out.Insights, out.GuidedStep)
				if out.DataIssue != "" {
					fmt.Fprintf(w, "warning:  %s\n", out.DataIssue)
				}
				return nil
			})
		},
	}
}

// #endregion status

// #region recommend
func newRecommendCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Explain the recommended preset and its 2-hour projection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				rec := a.store.Recommendation()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), rec)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%s [%s] confidence %.2f\n", rec.Preset, rec.Branch, rec.Confidence)
				fmt.Fprintf(w, "what: %s\n", rec.What)
				fmt.Fprintf(w, "why:  %s\n", rec.Why)
				fmt.Fprintf(w, "load in %dh: %d (%+d)\n", rec.HorizonHours, rec.ProjectedLoad, rec.ProjectedDelta)
				return nil
			})
		},
	}
}

func newPresetsCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Rank the regulation presets for the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				ranked := a.store.RankedPresets()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), ranked)
				}
				w := cmd.OutOrStdout()
				profile := a.store.Profile()
				for i, r := range ranked {
					title := string(r.Preset)
					duration := 0
					if p, ok := profile.Preset(r.Preset); ok {
						title, duration = p.Title, p.DurationSeconds
					}
					fmt.Fprintf(w, "%d. %-16s %-16s score %.3f  samples %d  %ds\n",
						i+1, r.Preset, title, r.Score, r.Samples, duration)
				}
				return nil
			})
		},
	}
}

func newDriversCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "drivers",
		Short: "List contextual drivers re-ranked by today's signals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				drivers := a.store.Drivers()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), drivers)
				}
				for _, d := range drivers {
					fmt.Fprintf(cmd.OutOrStdout(), "%-24s %.2f (base %.2f) %s\n", d.Name, d.Impact, d.BaseImpact, d.Influence)
				}
				return nil
			})
		},
	}
}

func newWorkingCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "working",
		Short: "Summarize which presets have helped so far",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(_ context.Context, a *app) error {
				ww := a.store.WhatsWorking()
				if o.jsonOut {
					return writeJSON(cmd.OutOrStdout(), ww)
				}
				w := cmd.OutOrStdout()
				fmt.Fprintln(w, ww.Headline)
				for _, st := range ww.Stats {
					fmt.Fprintf(w, "  %-16s %d sessions  mean reward %.2f\n", st.Preset, st.Completed, st.MeanReward)
				}
				fmt.Fprintf(w, "completion rate: %d%%\n", ww.CompletionRate)
				return nil
			})
		},
	}
}

// #endregion recommend
