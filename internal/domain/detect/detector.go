package detect

import (
	"net/url"
	"strconv"
	"strings"
)

// Detector assigns captured requests to vendors using the ordered registry.
// The zero value is unusable; construct with NewDetector.
type Detector struct {
	vendors []Vendor
}

// NewDetector builds a detector over the given vendor table. Passing
// Registry() gives the standard configuration.
func NewDetector(vendors []Vendor) *Detector {
	return &Detector{vendors: vendors}
}

// Detect returns the key of the first vendor claiming the request, or
// ("", false) when no vendor matches. Matching never fails on malformed
// input: an unparseable URL falls back to pattern-testing the whole string.
func (d *Detector) Detect(domain, rawURL, rawQuery string) (string, bool) {
	lowerDomain := strings.ToLower(domain)
	lowerQuery := strings.ToLower(rawQuery)

	path := strings.ToLower(rawURL)
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		path = strings.ToLower(u.Path)
	}

	for _, v := range d.vendors {
		if !matchesDomain(lowerDomain, v.Domains) {
			continue
		}
		if v.PathPattern != nil {
			if v.PathPattern.MatchString(path) {
				return v.Key, true
			}
			if v.QueryPattern != nil && v.QueryPattern.MatchString(lowerQuery) {
				return v.Key, true
			}
			// Domain matched but the required signature did not: this
			// vendor is out, but a later one may still claim the request.
			continue
		}
		return v.Key, true
	}
	return "", false
}

func matchesDomain(domain string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.Contains(domain, s) {
			return true
		}
	}
	return false
}

// PixelID extracts the vendor's tracking/measurement identifier from
// extracted parameters, returning "N/A" when absent.
func PixelID(vendorKey string, params map[string]any) string {
	var keys []string
	switch vendorKey {
	case "ga4":
		keys = []string{"tid"}
	case "gtm", "meta":
		keys = []string{"id"}
	case "gads":
		keys = []string{"google_conversion_id", "aw_conversion_id"}
	case "tiktok":
		keys = []string{"sdkid"}
	case "linkedin":
		keys = []string{"pid"}
	case "hotjar":
		keys = []string{"sv"}
	case "criteo":
		keys = []string{"a"}
	default:
		keys = []string{"id"}
	}
	for _, k := range keys {
		if v, ok := params[k]; ok {
			if s := toString(v); s != "" {
				return s
			}
		}
	}
	return "N/A"
}

// EventName derives the semantic event name from extracted parameters,
// falling back to the vendor's default event.
func EventName(vendorKey string, params map[string]any) string {
	switch vendorKey {
	case "ga4":
		if s := paramString(params, "en"); s != "" {
			return s
		}
		if s := paramString(params, "t"); s != "" {
			return s
		}
		return "page_view"
	case "gtm":
		return "container_load"
	case "meta":
		if s := paramString(params, "ev"); s != "" {
			return s
		}
		return "PageView"
	case "gads":
		if paramString(params, "label") != "" || paramString(params, "conversion_label") != "" {
			return "conversion"
		}
		return "remarketing"
	case "tiktok":
		if s := paramString(params, "event"); s != "" {
			return s
		}
		return "PageView"
	case "linkedin":
		if paramString(params, "conversion_id") != "" {
			return "conversion"
		}
		return "page_view"
	case "hotjar":
		return "recording"
	case "criteo":
		if s := paramString(params, "p"); s != "" {
			return s
		}
		return "viewPage"
	default:
		return "unknown"
	}
}

func paramString(params map[string]any, key string) string {
	if v, ok := params[key]; ok {
		return toString(v)
	}
	return ""
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return ""
	}
}
