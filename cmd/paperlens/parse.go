// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paperlens/internal/mathnorm"
	"github.com/pdiddy/paperlens/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse [markup...]",
	Short: "Normalize and analyze equation markup",
	Long: `Parse runs the markup normalizer on each argument, or on each non-empty
line of standard input when no arguments are given, and prints the parsed
equation: cleaned and readable forms, variables, operators, functions, and
the structural classification with its complexity score.

With --mathml the input is treated as a serialized MathML tree.`,
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	mathml, _ := cmd.Flags().GetBool("mathml")
	format, _ := cmd.Flags().GetString("format")

	inputs := args
	if len(inputs) == 0 {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			return err
		}
		inputs = lines
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no markup given: pass arguments or pipe lines on stdin")
	}

	results := make([]types.ParsedEquation, 0, len(inputs))
	for _, in := range inputs {
		if !mathml {
			results = append(results, mathnorm.Parse(in))
			continue
		}
		eq, err := mathnorm.ParseMathML(in)
		if err != nil {
			return err
		}
		results = append(results, eq)
	}

	if len(results) == 1 {
		return writeStructured(cmd.OutOrStdout(), results[0], format)
	}
	return writeStructured(cmd.OutOrStdout(), results, format)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 4<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	return lines, nil
}

func init() {
	parseCmd.Flags().Bool("mathml", false, "treat input as MathML")
	parseCmd.Flags().String("format", "json", "output format: json or yaml")

	rootCmd.AddCommand(parseCmd)
}
