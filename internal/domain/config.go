package domain

import (
	"fmt"
	"strings"
)

// AuditConfig holds audit tuning loaded from .tagaudit.yaml.
type AuditConfig struct {
	// Vendors restricts the audit to a subset of vendor keys. Empty means all.
	Vendors []string `yaml:"vendors"         json:"vendors,omitempty"`
	// DuplicateWindowMS is the window in which two identical page-view
	// events on the same page count as duplicates.
	DuplicateWindowMS int `yaml:"duplicate_window_ms" json:"duplicate_window_ms,omitempty"`
	// ExcludeDomains drops captured requests to matching domains before
	// detection (substring match).
	ExcludeDomains []string `yaml:"exclude_domains" json:"exclude_domains,omitempty"`
	// MinScore is the CI threshold: audits scoring below it fail `audit --ci`.
	MinScore int `yaml:"min_score"       json:"min_score,omitempty"`
}

// DefaultConfig returns the config used when no .tagaudit.yaml exists.
func DefaultConfig() AuditConfig {
	return AuditConfig{DuplicateWindowMS: 500}
}

// Validate checks numeric ranges. Vendor keys are validated by the loader,
// which knows the registry.
func (c AuditConfig) Validate() error {
	if c.DuplicateWindowMS < 0 {
		return fmt.Errorf("duplicate_window_ms must be >= 0 (got %d)", c.DuplicateWindowMS)
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min_score must be between 0 and 100 (got %d)", c.MinScore)
	}
	return nil
}

// VendorEnabled reports whether the given vendor key participates in the audit.
func (c AuditConfig) VendorEnabled(key string) bool {
	if len(c.Vendors) == 0 {
		return true
	}
	for _, v := range c.Vendors {
		if v == key {
			return true
		}
	}
	return false
}

// DomainExcluded reports whether a request domain is filtered out.
func (c AuditConfig) DomainExcluded(domain string) bool {
	for _, d := range c.ExcludeDomains {
		if d != "" && strings.Contains(domain, d) {
			return true
		}
	}
	return false
}
