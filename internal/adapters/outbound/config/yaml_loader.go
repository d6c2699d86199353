// Package config loads audit configuration from .tagaudit.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tagaudit/tagaudit/internal/domain"
	"github.com/tagaudit/tagaudit/internal/domain/detect"
)

const fileName = ".tagaudit.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .tagaudit.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .tagaudit.yaml from dir. Returns DefaultConfig if the file
// does not exist.
func (l *YAMLLoader) Load(dir string) (domain.AuditConfig, error) {
	data, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.AuditConfig{}, err
	}

	cfg := domain.DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.AuditConfig{}, fmt.Errorf("parsing %s: %w", fileName, err)
	}

	// Validate before use — catches typos in the user's raw input.
	if err := cfg.Validate(); err != nil {
		return domain.AuditConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	if err := validateVendors(cfg.Vendors); err != nil {
		return domain.AuditConfig{}, fmt.Errorf("invalid %s: %w", fileName, err)
	}
	if cfg.DuplicateWindowMS == 0 {
		cfg.DuplicateWindowMS = domain.DefaultConfig().DuplicateWindowMS
	}

	return cfg, nil
}

// validateVendors rejects vendor keys the registry does not know.
func validateVendors(vendors []string) error {
	known := detect.Keys()
	index := make(map[string]bool, len(known))
	for _, k := range known {
		index[k] = true
	}
	for _, v := range vendors {
		if !index[v] {
			return fmt.Errorf("unknown vendor %q (known: %s)", v, strings.Join(known, ", "))
		}
	}
	return nil
}
