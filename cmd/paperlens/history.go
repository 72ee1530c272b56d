// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paperlens/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse, search, and export earlier analyses",
	Long: `History manages the local SQLite database of analyzed pages. Use
subcommands to list recent pages, search equations by text, show one page,
or export everything.`,
}

// --- recent subcommand ---

var historyRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently analyzed pages",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRecent,
}

func runHistoryRecent(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	pages, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if pages == nil {
			pages = []history.PageRecord{}
		}
		return writeStructured(w, pages, "json")
	}
	if len(pages) == 0 {
		fmt.Fprintln(w, "No pages recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-16s  %-8s  %-4s  %-40s  %s\n", "Analyzed", "Site", "Eqs", "Title", "URL")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, p := range pages {
		fmt.Fprintf(w, "%-16s  %-8s  %-4d  %-40s  %s\n",
			p.AnalyzedAt.Local().Format("2006-01-02 15:04"), p.Site, p.Equations, cell(p.Title, 40), p.URL)
	}
	return nil
}

// --- search subcommand ---

var historySearchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Full-text search over stored equations",
	Long: `Search matches words against the original markup and the readable form
of every stored equation. All words must match; command names (sum, frac)
and glyphs (α, ∑) both work.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runHistorySearch,
}

func runHistorySearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.Search(cmd.Context(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if results == nil {
			results = []history.SearchResult{}
		}
		return writeStructured(w, results, "json")
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return nil
	}

	fmt.Fprintf(w, "%-4s  %-16s  %-4s  %-50s  %s\n", "Rank", "Type", "Cx", "Readable", "Page")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for i, r := range results {
		eq := r.Equation.Parsed
		fmt.Fprintf(w, "%-4d  %-16s  %-4d  %-50s  %s\n",
			i+1, eq.Structure.Type, eq.Structure.Complexity, cell(eq.Readable, 50), cell(r.PageTitle, 30))
	}
	fmt.Fprintf(w, "\n%d results\n", len(results))
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show [url]",
	Short: "Show the stored analysis of one page",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := store.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if format == "text" {
		printAnalysis(cmd.OutOrStdout(), a)
		return nil
	}
	return writeStructured(cmd.OutOrStdout(), a, format)
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all stored analyses to YAML or JSON",
	Args:  cobra.NoArgs,
	RunE:  runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	store, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	var w io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating %s: %w", output, err)
		}
		defer f.Close()
		w = f
	}

	if err := store.Export(cmd.Context(), w, format); err != nil {
		return err
	}
	if output != "" {
		fmt.Fprintf(os.Stderr, "Exported to %s\n", output)
	}
	return nil
}

// --- shared helpers ---

func openHistory(cmd *cobra.Command) (*history.Store, error) {
	if err := bindFlags(cmd, viper.GetViper(), configFlags); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return history.NewStore(cfg.History)
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	historyCmd.PersistentFlags().String("history-dir", "", "directory containing history.db (overrides config)")

	historyRecentCmd.Flags().Int("limit", 0, "maximum pages (0 = use default)")
	historyRecentCmd.Flags().Bool("json", false, "output as JSON")

	historySearchCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	historySearchCmd.Flags().Bool("json", false, "output results as JSON")

	historyShowCmd.Flags().String("format", "text", "output format: text, json or yaml")

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	historyExportCmd.Flags().String("output", "", "write to this file instead of stdout")

	// Wire subcommands.
	historyCmd.AddCommand(historyRecentCmd)
	historyCmd.AddCommand(historySearchCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
