// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperlens/internal/analyze"
	"github.com/pdiddy/paperlens/internal/backend"
	"github.com/pdiddy/paperlens/internal/history"
	"github.com/pdiddy/paperlens/pkg/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [page-file]",
	Short: "Analyze every equation on an extracted page",
	Long: `Analyze loads a page record (JSON, or YAML for .yaml/.yml files; "-" reads
JSON from stdin), normalizes every equation it carries or embeds, and ranks
them by complexity. When a backend is configured it also fetches a page
summary and explanations of the most complex equations.

The result is recorded in the history database unless --no-history is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	offline, _ := cmd.Flags().GetBool("offline")
	noHistory, _ := cmd.Flags().GetBool("no-history")
	format, _ := cmd.Flags().GetString("format")

	if err := bindFlags(cmd, viper.GetViper(), configFlags); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	page, err := analyze.LoadPage(args[0])
	if err != nil {
		return err
	}

	var be analyze.Backend
	if !offline && cfg.Backend.BaseURL != "" {
		be = backend.NewClient(cfg.Backend)
	} else if !offline {
		log.Info().Msg("no backend configured; running local analysis only")
	}

	a := analyze.New(cfg.Analysis, be, log.Logger)
	analysis, analyzeErr := a.AnalyzePage(cmd.Context(), page)
	if analyzeErr != nil {
		log.Warn().Err(analyzeErr).Msg("analysis incomplete")
	}

	if !noHistory {
		store, err := history.NewStore(cfg.History)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Record(cmd.Context(), analysis); err != nil {
			return err
		}
		log.Debug().Str("url", analysis.URL).Msg("recorded analysis")
	}

	w := cmd.OutOrStdout()
	if format == "text" {
		printAnalysis(w, analysis)
	} else if err := writeStructured(w, analysis, format); err != nil {
		return err
	}
	return analyzeErr
}

func printAnalysis(w io.Writer, a types.PageAnalysis) {
	fmt.Fprintf(w, "%s\n%s\n", a.Title, a.URL)
	if a.Summary != "" {
		fmt.Fprintf(w, "\n%s\n", a.Summary)
		for _, kp := range a.KeyPoints {
			fmt.Fprintf(w, "  - %s\n", kp)
		}
	}

	if len(a.Equations) == 0 {
		fmt.Fprintln(w, "\nNo equations found.")
		return
	}

	fmt.Fprintf(w, "\n%-4s  %-16s  %-4s  %s\n", "Rank", "Type", "Cx", "Readable")
	fmt.Fprintln(w, strings.Repeat("-", 90))
	for i, eq := range a.Equations {
		fmt.Fprintf(w, "%-4d  %-16s  %-4d  %s\n",
			i+1, eq.Parsed.Structure.Type, eq.Parsed.Structure.Complexity, cell(eq.Parsed.Readable, 60))
		switch {
		case eq.Explanation != nil && eq.Explanation.Meaning != "":
			fmt.Fprintf(w, "      %s\n", cell(eq.Explanation.Meaning, 84))
		case eq.ExplainError != "":
			fmt.Fprintf(w, "      (explanation failed: %s)\n", cell(eq.ExplainError, 60))
		}
	}
	fmt.Fprintf(w, "\n%d equations\n", len(a.Equations))
}

var askCmd = &cobra.Command{
	Use:   "ask [page-file] [question...]",
	Short: "Ask the backend a question about a page",
	Long: `Ask sends a question, together with the text of the page, to the analysis
backend and prints the answer and the passages it drew on.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, viper.GetViper(), configFlags); err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	page, err := analyze.LoadPage(args[0])
	if err != nil {
		return err
	}

	var be analyze.Backend
	if cfg.Backend.BaseURL != "" {
		be = backend.NewClient(cfg.Backend)
	}
	a := analyze.New(cfg.Analysis, be, log.Logger)

	resp, err := a.Ask(cmd.Context(), page, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, resp.Answer)
	if len(resp.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, s := range resp.Sources {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	return nil
}

func init() {
	analyzeCmd.Flags().Bool("offline", false, "skip backend calls")
	analyzeCmd.Flags().Bool("no-history", false, "do not record the analysis")
	analyzeCmd.Flags().String("format", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().Int("explain-top", 0, "number of equations to explain (overrides config)")
	analyzeCmd.Flags().Int("workers", 0, "concurrent explain requests (overrides config)")

	analyzeCmd.Flags().String("backend-url", "", "analysis backend base URL (overrides config)")
	analyzeCmd.Flags().String("history-dir", "", "directory containing history.db (overrides config)")
	askCmd.Flags().String("backend-url", "", "analysis backend base URL (overrides config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(askCmd)
}
