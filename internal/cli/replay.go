package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/replay"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// #region replay
func newReplayCmd(o *rootOptions) *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "replay <fixture.json>...",
		Short: "Replay intent fixtures against a fresh in-memory engine",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.LogMode)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()
			catalog := scenario.DefaultCatalog()
			if cfg.CatalogPath != "" {
				if catalog, err = scenario.LoadCatalog(cfg.CatalogPath); err != nil {
					return fmt.Errorf("load catalog: %w", err)
				}
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			failed := 0
			w := cmd.OutOrStdout()
			for _, path := range args {
				f, err := replay.LoadFixture(path)
				if err != nil {
					return err
				}
				results, err := replay.Replay(ctx, f, replay.Options{Catalog: catalog, Logger: logger})
				if err != nil {
					return fmt.Errorf("replay %s: %w", path, err)
				}
				mismatches := replay.Check(f, results)
				summary := replay.Summarize(results)
				if o.jsonOut {
					if err := writeJSON(w, map[string]any{
						"fixture":    path,
						"summary":    summary,
						"mismatches": mismatches,
					}); err != nil {
						return err
					}
				} else {
					fmt.Fprintf(w, "%s: %d steps, %d applied, %d no-op, final %s (day %d)\n",
						path, summary.TotalSteps, summary.Applied, summary.NoOps, summary.FinalMetrics, summary.FinalDay)
					if verbose {
						for _, r := range results {
							fmt.Fprintf(w, "  %-24s %-18s %-7s %s  next=%s\n", r.StepID, r.Intent, r.Action, r.Metrics, r.Recommendation)
						}
					}
					for _, m := range mismatches {
						fmt.Fprintf(w, "  FAIL %s\n", m)
					}
				}
				if len(mismatches) > 0 {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d fixtures failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print every step")
	return cmd
}

// #endregion replay
