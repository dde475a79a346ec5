// Package cli is the mindsense command tree. Every command wires a fresh engine
// from configuration, runs one or more intents and flushes before exiting.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/config"
)

func Execute() error {
	return newRootCmd().Execute()
}

type rootOptions struct {
	v          *viper.Viper
	configFile string
	jsonOut    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}
	rootCmd := &cobra.Command{
		Use:           "mindsense",
		Short:         "Adaptive state and recommendation engine",
		Long:          "mindsense simulates a wellness day: metrics, regulation sessions, behavior experiments and derived health signals, persisted between runs.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default ./mindsense.yaml)")
	flags.String("backend", "", "storage backend: sqlite, redis or memory")
	flags.String("db", "", "sqlite database path")
	flags.String("redis-url", "", "redis URL for the redis backend or analytics stream")
	flags.String("account", "", "account id used for per-account keys")
	flags.String("log", "", "log mode: dev, prod or nop")
	flags.BoolVar(&opts.jsonOut, "json", false, "print JSON instead of text")
	for key, flag := range map[string]string{
		"storage.backend":   "backend",
		"storage.path":      "db",
		"storage.redis_url": "redis-url",
		"account.id":        "account",
		"log.mode":          "log",
	} {
		_ = opts.v.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(
		newStatusCmd(opts),
		newRecommendCmd(opts),
		newPresetsCmd(opts),
		newDriversCmd(opts),
		newWorkingCmd(opts),
		newScenarioCmd(opts),
		newSessionCmd(opts),
		newExperimentCmd(opts),
		newFastForwardCmd(opts),
		newCheckInCmd(opts),
		newReflectCmd(opts),
		newInsightCmd(opts),
		newProgressCmd(opts),
		newHealthCmd(opts),
		newRepairCmd(opts),
		newInspectCmd(opts),
		newAuditCmd(opts),
		newAnalyticsCmd(opts),
		newReplayCmd(opts),
		newRunCmd(opts),
	)
	return rootCmd
}

// loadConfig resolves file, environment and flag settings.
func (o *rootOptions) loadConfig() (config.Config, error) {
	if o.configFile != "" {
		o.v.SetConfigFile(o.configFile)
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// withApp wires the engine, runs fn and always closes it.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) (err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := wireApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.close(ctx); err == nil {
			err = cerr
		}
	}()
	return fn(ctx, a)
}
