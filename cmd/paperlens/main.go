// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paperlens CLI. paperlens
// normalizes the math in research papers and blog posts, ranks equations
// by complexity, asks a remote backend to explain them, and keeps a
// searchable history of analyzed pages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperlens/internal/secrets"
	"github.com/pdiddy/paperlens/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// apiKeyEnv is consulted when neither the config nor .secrets/ provide a
// backend key.
const apiKeyEnv = "PAPERLENS_API_KEY"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the paperlens CLI.
var rootCmd = &cobra.Command{
	Use:   "paperlens",
	Short: "Understand the math in papers and technical posts",
	Long: `paperlens reads pages produced by the browser extractors (arXiv, Medium,
blogs), normalizes every equation it finds, ranks them by complexity, and asks
the analysis backend to explain the most complex ones.

Use parse and scan to inspect markup locally, analyze to process a whole page,
ask to query a page, and history to revisit earlier analyses.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		setupLogging(verbose)

		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			log.Debug().Strs("keys", keys).Msg("loaded secrets")
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paperlens.yaml or ~/.config/paperlens/paperlens.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
}

func setupLogging(verbose bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paperlens")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "paperlens"))
		}
	}

	setConfigDefaults(viper.GetViper())

	viper.SetEnvPrefix("PAPERLENS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setConfigDefaults registers every key of types.AppConfig so environment
// overrides reach Unmarshal.
func setConfigDefaults(v *viper.Viper) {
	d := types.DefaultAppConfig()
	v.SetDefault("backend.base_url", d.Backend.BaseURL)
	v.SetDefault("backend.api_key", d.Backend.APIKey)
	v.SetDefault("backend.timeout", d.Backend.Timeout)
	v.SetDefault("backend.user_agent", d.Backend.UserAgent)
	v.SetDefault("backend.max_retries", d.Backend.MaxRetries)
	v.SetDefault("analysis.workers", d.Analysis.Workers)
	v.SetDefault("analysis.explain_top", d.Analysis.ExplainTop)
	v.SetDefault("analysis.min_complexity", d.Analysis.MinComplexity)
	v.SetDefault("analysis.cache_size", d.Analysis.CacheSize)
	v.SetDefault("history.history_dir", d.History.HistoryDir)
	v.SetDefault("history.max_results", d.History.MaxResults)
}

// configFlags maps command flags to the configuration keys they override.
var configFlags = map[string]string{
	"backend-url": "backend.base_url",
	"explain-top": "analysis.explain_top",
	"workers":     "analysis.workers",
	"history-dir": "history.history_dir",
}

// bindFlags binds those of flags that cmd defines. A bound flag overrides
// the config file and environment only when set on the command line.
func bindFlags(cmd *cobra.Command, v *viper.Viper, flags map[string]string) error {
	for name, key := range flags {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding flag --%s: %w", name, err)
		}
	}
	return nil
}

// loadConfig decodes the merged configuration (defaults, file,
// environment, bound flags) and resolves the backend key.
func loadConfig(v *viper.Viper) (types.AppConfig, error) {
	cfg := types.DefaultAppConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return types.AppConfig{}, fmt.Errorf("decoding configuration: %w", err)
	}
	cfg.Backend.APIKey = secrets.Resolve(cfg.Backend.APIKey, loadedSecrets, secrets.BackendAPIKey, apiKeyEnv)
	return cfg, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("paperlens failed")
		os.Exit(1)
	}
}
