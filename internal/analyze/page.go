// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analyze

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paperlens/pkg/types"
)

// LoadPage reads an extracted page record. Files ending in .yaml or .yml
// are decoded as YAML; everything else, including "-" for standard input,
// as JSON.
func LoadPage(path string) (types.PageContent, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return types.PageContent{}, fmt.Errorf("reading page %s: %w", path, err)
	}

	var page types.PageContent
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &page)
	default:
		err = json.Unmarshal(data, &page)
	}
	if err != nil {
		return types.PageContent{}, fmt.Errorf("parsing page %s: %w", path, err)
	}
	return page, nil
}
