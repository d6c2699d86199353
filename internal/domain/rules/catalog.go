package rules

import "time"

// DefaultDuplicateWindow bounds how far apart two identical page-view hits
// may fire and still count as duplicates.
const DefaultDuplicateWindow = 500 * time.Millisecond

// Options tune catalog construction.
type Options struct {
	// DuplicateWindow overrides DefaultDuplicateWindow when positive.
	DuplicateWindow time.Duration
}

// Catalog builds the full rule set, keyed by vendor. Vendors without a
// catalog (gtm, linkedin, hotjar, criteo) are reported but not rule-checked.
func Catalog(opts Options) map[string][]Rule {
	window := opts.DuplicateWindow
	if window <= 0 {
		window = DefaultDuplicateWindow
	}
	return map[string][]Rule{
		"meta":   metaRules(window),
		"ga4":    ga4Rules(window),
		"gads":   gadsRules(),
		"tiktok": tiktokRules(),
	}
}
