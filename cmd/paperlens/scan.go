// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/internal/mathscan"
	"github.com/pdiddy/paperlens/pkg/types"
)

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "List the equations embedded in a text or HTML file",
	Long: `Scan finds math in a document: $...$, $$...$$, \(...\), \[...\] and
display environments in plain text or Markdown, or <math> elements and MathJax
script blocks in HTML. Files ending in .html or .htm are scanned as HTML; use
--html to force it. Reads standard input when no file is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func runScan(cmd *cobra.Command, args []string) error {
	forceHTML, _ := cmd.Flags().GetBool("html")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	data, err := readInput(cmd.InOrStdin(), path)
	if err != nil {
		return err
	}

	var eqs []types.RawEquation
	ext := strings.ToLower(filepath.Ext(path))
	if forceHTML || ext == ".html" || ext == ".htm" {
		eqs, err = mathscan.ScanHTML(bytes.NewReader(data))
		if err != nil {
			return err
		}
	} else {
		eqs = mathscan.Scan(string(data))
	}

	w := cmd.OutOrStdout()
	if jsonOutput {
		if eqs == nil {
			eqs = []types.RawEquation{}
		}
		return writeStructured(w, eqs, "json")
	}

	if len(eqs) == 0 {
		fmt.Fprintln(w, "No equations found.")
		return nil
	}
	fmt.Fprintf(w, "%-4s  %-7s  %-6s  %s\n", "#", "Mode", "Format", "Markup")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for i, eq := range eqs {
		mode := "inline"
		if eq.Display {
			mode = "display"
		}
		fmt.Fprintf(w, "%-4d  %-7s  %-6s  %s\n", i+1, mode, eq.Format, cell(eq.Markup, 60))
	}
	fmt.Fprintf(w, "\n%d equations\n", len(eqs))
	return nil
}

// readInput reads path, or stdin when path is "-".
func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func init() {
	scanCmd.Flags().Bool("html", false, "scan input as HTML")
	scanCmd.Flags().Bool("json", false, "output equations as JSON")

	rootCmd.AddCommand(scanCmd)
}
