// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paperlens/pkg/types"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv(apiKeyEnv, "")
	v := viper.New()
	setConfigDefaults(v)

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, types.DefaultAppConfig(), cfg)
}

func TestLoadConfig_FileEnvAndSecrets(t *testing.T) {
	t.Setenv("PAPERLENS_ANALYSIS_EXPLAIN_TOP", "7")
	t.Setenv(apiKeyEnv, "env-key")

	v := viper.New()
	setConfigDefaults(v)
	v.SetEnvPrefix("PAPERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
backend:
  base_url: http://localhost:8000
  timeout: 5s
analysis:
  workers: 9
`)))

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "paperlens/0.1", cfg.Backend.UserAgent)
	assert.Equal(t, 9, cfg.Analysis.Workers)
	assert.Equal(t, 7, cfg.Analysis.ExplainTop)
	assert.Equal(t, "env-key", cfg.Backend.APIKey)
}

func TestWriteStructured(t *testing.T) {
	v := map[string]string{"readable": "α < β"}

	var jsonOut bytes.Buffer
	require.NoError(t, writeStructured(&jsonOut, v, "json"))
	assert.Equal(t, "{\n  \"readable\": \"α < β\"\n}\n", jsonOut.String())

	var yamlOut bytes.Buffer
	require.NoError(t, writeStructured(&yamlOut, v, "yaml"))
	assert.Equal(t, "readable: α < β\n", yamlOut.String())

	assert.Error(t, writeStructured(&bytes.Buffer{}, v, "toml"))
}

func TestCell(t *testing.T) {
	assert.Equal(t, "a b", cell("a \n b", 10))
	assert.Equal(t, "αβγ", cell("αβγ", 3))
	assert.Equal(t, "αβ...", cell("αβγδεζ", 5))
	assert.Equal(t, "ab", cell("abcdef", 2))
}
