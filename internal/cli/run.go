package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region run
func newRunCmd(o *rootOptions) *cobra.Command {
	var (
		preset  string
		runFor  time.Duration
		keepRun bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the engine loop with the 1s session tick until interrupted",
		Long:  "run owns the engine on a single loop goroutine. With --preset it starts a session and exits once the routine is done, unless --keep-running is set.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.withApp(cmd, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
				defer stop()
				if runFor > 0 {
					var cancel context.CancelFunc
					ctx, cancel = context.WithTimeout(ctx, runFor)
					defer cancel()
				}

				loop := state.NewLoop(a.store, state.LoopOptions{})
				runCtx, cancelRun := context.WithCancel(ctx)
				done := make(chan struct{})
				var runErr error
				go func() {
					runErr = loop.Run(runCtx)
					close(done)
				}()
				defer func() {
					cancelRun()
					<-done
				}()

				w := cmd.OutOrStdout()
				if preset != "" {
					var d state.Decision
					if err := loop.Do(ctx, func(s *state.Store) {
						d = s.StartSession(ctx, scenario.PresetID(preset), "run")
					}); err != nil {
						return err
					}
					fmt.Fprintf(w, "startSession: %s (%s)\n", d.Action, d.Reason)
				}

				poll := time.NewTicker(state.TickInterval)
				defer poll.Stop()
				// shown covers a session that was already awaiting check-in at the first poll.
				shown := false
				for {
					select {
					case <-done:
						return quietCancel(runErr)
					case <-poll.C:
					}
					var (
						current session.State
						elapsed time.Duration
						banner  string
					)
					err := loop.Do(ctx, func(s *state.Store) {
						if ss := s.ActiveSession(); ss != nil {
							current = ss.State
							elapsed = ss.Elapsed(time.Now())
						}
						if current == session.AwaitingCheckIn && !shown {
							banner = s.ShowBanner("Routine complete. Record how it went with `mindsense session complete`.").Message
						}
					})
					if err != nil {
						return quietCancel(err)
					}
					if current == session.InProgress {
						fmt.Fprintf(w, "\r%s elapsed", elapsed.Truncate(time.Second))
					}
					if banner != "" {
						shown = true
						fmt.Fprintf(w, "\n%s\n", banner)
						if !keepRun {
							return nil
						}
					}
					if current != session.AwaitingCheckIn {
						shown = false
					}
				}
			})
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "start a session with this preset first")
	cmd.Flags().DurationVar(&runFor, "for", 0, "stop after this long (0 runs until interrupted)")
	cmd.Flags().BoolVar(&keepRun, "keep-running", false, "keep the loop running after the routine completes")
	return cmd
}

// quietCancel treats a cancelled or stopped loop as a clean exit.
func quietCancel(err error) error {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, state.ErrLoopStopped) {
		return nil
	}
	return err
}

// #endregion run
