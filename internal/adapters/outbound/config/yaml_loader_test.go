package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditconfig "github.com/tagaudit/tagaudit/internal/adapters/outbound/config"
	"github.com/tagaudit/tagaudit/internal/domain"
)

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tagaudit.yaml"), []byte(content), 0644))
}

func TestYAMLLoader_MissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := auditconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestYAMLLoader_ValidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
vendors:
  - meta
  - ga4
duplicate_window_ms: 250
exclude_domains:
  - staging.example
min_score: 80
`)
	loader := auditconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"meta", "ga4"}, cfg.Vendors)
	assert.Equal(t, 250, cfg.DuplicateWindowMS)
	assert.Equal(t, []string{"staging.example"}, cfg.ExcludeDomains)
	assert.Equal(t, 80, cfg.MinScore)
}

func TestYAMLLoader_InvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `{{{invalid yaml`)
	loader := auditconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "parsing .tagaudit.yaml")
}

func TestYAMLLoader_UnknownVendorRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `vendors: [meta, adobe]`)
	loader := auditconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), `unknown vendor "adobe"`)
}

func TestYAMLLoader_OutOfRangeMinScoreRejected(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `min_score: 250`)
	loader := auditconfig.New()

	_, err := loader.Load(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "min_score")
}

func TestYAMLLoader_WindowDefaultsWhenOmitted(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `vendors: [meta]`)
	loader := auditconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.DuplicateWindowMS)
}

func TestYAMLLoader_EmptyFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "")
	loader := auditconfig.New()

	cfg, err := loader.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}
