// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

// exportLimit bounds the number of pages in one export.
const exportLimit = 100000

// Export writes every stored analysis, newest first, to w as "yaml" or
// "json".
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	if format != "yaml" && format != "json" {
		return fmt.Errorf("unsupported export format %q (want yaml or json)", format)
	}

	pages, err := s.Recent(ctx, exportLimit)
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}
	analyses := make([]types.PageAnalysis, 0, len(pages))
	for _, p := range pages {
		a, err := s.Get(ctx, p.URL)
		if err != nil {
			return fmt.Errorf("loading %s for export: %w", p.URL, err)
		}
		analyses = append(analyses, a)
	}

	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analyses); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		return nil
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(analyses); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}
