package rules

import (
	"regexp"
	"strings"
	"time"

	"github.com/fatih/camelcase"

	"github.com/tagaudit/tagaudit/internal/domain"
)

var ga4MeasurementIDRe = regexp.MustCompile(`^G-[A-Z0-9]+$`)

// ga4 e-commerce events carrying item payloads (pr1, pr2, ... on the wire).
var ga4ItemEvents = []string{"add_to_cart", "view_item", "begin_checkout", "purchase"}

// ga4Rules builds the Google Analytics 4 catalog. window bounds duplicate
// page_view detection.
func ga4Rules(window time.Duration) []Rule {
	return []Rule{
		{
			ID:          "GA4-001",
			Name:        "Measurement ID Presence",
			Description: "Checks if the `tid` parameter (Measurement ID) is present and formatted as G-XXXXXXX.",
			Fields:      []string{"tid"},
			Severity:    domain.SeverityCritical,
			Deduction:   30,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				tid, ok := paramString(e, "tid")
				if !ok || tid == "" {
					return fail("missing")
				}
				if !ga4MeasurementIDRe.MatchString(strings.ToUpper(tid)) {
					return fail("invalid format: " + tid)
				}
				return pass()
			},
			Message:        "GA4 Measurement ID missing or invalid. Hits will not reach a property.",
			Template:       "GA4 Measurement ID missing or invalid in {event_name} event.",
			Recommendation: "Check the gtag.js or Tag Manager configuration and make sure the G-XXXXXXX Measurement ID is set.",
			DocURL:         "https://support.google.com/analytics/answer/9539598",
		},
		{
			ID:          "GA4-002",
			Name:        "Event Name Presence",
			Description: "Checks if the `en` parameter (event name) is present and not empty.",
			Fields:      []string{"en"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if en, _ := paramString(e, "en"); en != "" {
					return pass()
				}
				// The first hit of a session legitimately omits en and
				// defaults to page_view.
				if e.EventName == "page_view" {
					return skip()
				}
				if e.EventName != "" {
					return pass()
				}
				return fail("")
			},
			Message:        "Event name ('en') missing. GA4 cannot classify the hit.",
			Template:       "Event name missing from GA4 request on {url}.",
			Recommendation: "Make sure every gtag('event', ...) call passes an event name.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference/events",
		},
		{
			ID:          "GA4-003",
			Name:        "Duplicate page_view Event",
			Description: "Detects if the `page_view` event fires multiple times identically during the same page load.",
			Fields:      []string{"tid", "en", "dl"},
			Severity:    domain.SeverityCritical,
			Deduction:   25,
			Check: func(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) CheckResult {
				if e.EventName != "page_view" {
					return skip()
				}
				pageURL := eventURL(e)
				tid, _ := paramString(e, "tid")
				duplicates := 0
				for _, other := range batch {
					if other.EventID == e.EventID || other.EventName != "page_view" {
						continue
					}
					otherTid, _ := paramString(other, "tid")
					if eventURL(other) != pageURL || otherTid != tid {
						continue
					}
					delta := other.Timestamp.Sub(e.Timestamp)
					if delta < 0 {
						delta = -delta
					}
					if delta < window {
						duplicates++
					}
				}
				if duplicates > 0 {
					return fail(plural(duplicates+1, "identical page_view event"))
				}
				return pass()
			},
			Message:        "page_view event triggered multiple times on the same page. Sessions and engagement metrics will be skewed.",
			Template:       "Duplicate page_view event detected on {url}.",
			Recommendation: "Check for double-installed gtag snippets or a Tag Manager tag firing alongside a hardcoded one.",
			DocURL:         "https://support.google.com/analytics/answer/9216061",
		},
		{
			ID:          "GA4-004",
			Name:        "Multiple Measurement IDs",
			Description: "Detects if hits with different `tid`s are sent from the same site.",
			Fields:      []string{"tid"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) CheckResult {
				if tid, _ := paramString(e, "tid"); tid == "" {
					return skip()
				}
				seen := make(map[string]bool)
				var unique []string
				for _, other := range batch {
					tid, _ := paramString(other, "tid")
					if tid == "" || seen[tid] {
						continue
					}
					seen[tid] = true
					unique = append(unique, tid)
				}
				if len(unique) > 1 {
					return fail(strings.Join(unique, ", "))
				}
				return pass()
			},
			Message:        "Multiple different GA4 Measurement IDs detected.",
			Template:       "Multiple Measurement IDs detected: {detail}.",
			Recommendation: "Confirm whether dual-tagging is intentional. Otherwise remove the redundant property to avoid fragmented reporting.",
			DocURL:         "https://support.google.com/analytics/answer/9539598",
		},
		{
			ID:          "GA4-005",
			Name:        "purchase - Required Fields",
			Description: "If `en=purchase`, checks that transaction_id, value and currency are present.",
			Fields:      []string{"ep.transaction_id", "epn.value", "cu"},
			AppliesTo:   []string{"purchase"},
			Severity:    domain.SeverityCritical,
			Deduction:   25,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				var missing []string
				if _, ok := firstParam(e, "ep.transaction_id", "transaction_id"); !ok {
					missing = append(missing, "transaction_id")
				}
				if v, ok := firstParam(e, "epn.value", "value"); !ok {
					missing = append(missing, "value")
				} else if n, numeric := asNumber(v); !numeric || n <= 0 {
					missing = append(missing, "value (must be > 0)")
				}
				if cu, ok := firstParam(e, "cu", "currency"); !ok {
					missing = append(missing, "currency")
				} else if s, _ := asString(cu); !isAlpha3(s) {
					missing = append(missing, "currency (invalid ISO code)")
				}
				if len(missing) > 0 {
					return fail(strings.Join(missing, ", "))
				}
				return pass()
			},
			Message:        "REQUIRED transaction data missing/invalid for purchase event.",
			Template:       "purchase event missing required data: {detail}.",
			Recommendation: "The transaction_id, value and currency parameters are required for GA4 purchase events. Make sure your data layer supplies them.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/ga4/reference/events#purchase",
		},
		{
			ID:          "GA4-006",
			Name:        "Ecommerce - Items Payload",
			Description: "For e-commerce events, checks that an items payload (pr1, pr2, ...) is present.",
			Fields:      []string{"pr1", "items"},
			AppliesTo:   ga4ItemEvents,
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if ga4HasItems(e) {
					return pass()
				}
				return fail("no items found")
			},
			Message:        "Items payload missing for e-commerce event. Item-scoped reports will be empty.",
			Template:       "Items missing for '{event_name}' event.",
			Recommendation: "Populate the items array in your e-commerce events so product-level reporting works.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/ga4/ecommerce",
		},
		{
			ID:          "GA4-007",
			Name:        "Value Type Validation",
			Description: "Checks if the value parameter, when present, contains a valid numeric value.",
			Fields:      []string{"epn.value"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				v, ok := firstParam(e, "epn.value", "value")
				if !ok {
					return skip()
				}
				check := CheckMonetary(v)
				if !check.Valid {
					s, _ := asString(v)
					return fail(s)
				}
				return pass()
			},
			Message:        "The value parameter contains a non-numeric value.",
			Template:       "Invalid value parameter: '{detail}'.",
			Recommendation: "Send value as a plain number with a period decimal separator.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference",
		},
		{
			ID:          "GA4-008",
			Name:        "Currency Format Validation",
			Description: "Checks if the `cu` parameter, when present, is a valid ISO 4217 code.",
			Fields:      []string{"cu"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				cu, ok := firstParam(e, "cu", "currency")
				if !ok {
					return skip()
				}
				check := CheckCurrency(cu)
				if !check.Valid {
					s, _ := asString(cu)
					return fail(s)
				}
				return pass()
			},
			Message:        "The currency parameter contains an invalid code. Must be an ISO 4217 code (e.g., EUR, USD).",
			Template:       "Invalid currency parameter: '{detail}'.",
			Recommendation: "Always use a 3-letter ISO 4217 currency code for the cu parameter.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference",
		},
		{
			ID:          "GA4-009",
			Name:        "Currency Case Convention",
			Description: "A lowercase currency code works but should be sent uppercase.",
			Fields:      []string{"cu"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				cu, ok := firstParam(e, "cu", "currency")
				if !ok {
					return skip()
				}
				check := CheckCurrency(cu)
				if !check.Valid {
					// Format failure is GA4-008's job.
					return skip()
				}
				if check.Status == domain.StatusWarning {
					s, _ := asString(cu)
					return fail(strings.ToUpper(s))
				}
				return pass()
			},
			Message:        "Currency code sent in lowercase.",
			Template:       "Currency code should be uppercase: {detail}.",
			Recommendation: "Uppercase the currency code at the data layer to match the ISO 4217 convention.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference",
		},
		{
			ID:          "GA4-010",
			Name:        "Event Name Convention",
			Description: "GA4 event names should be lower snake_case.",
			Fields:      []string{"en"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				en, _ := paramString(e, "en")
				if en == "" {
					return skip()
				}
				if en == strings.ToLower(en) {
					return pass()
				}
				return fail(snakeCase(en))
			},
			Message:        "Event name is not in the recommended snake_case form.",
			Template:       "Event '{event_name}' should be named {detail}.",
			Recommendation: "Rename custom events to lower snake_case so they align with GA4's automatic and recommended events.",
			DocURL:         "https://support.google.com/analytics/answer/13316687",
		},
		{
			ID:          "GA4-011",
			Name:        "Client ID Presence",
			Description: "Checks for the `cid` parameter identifying the browser instance.",
			Fields:      []string{"cid"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if cid, _ := paramString(e, "cid"); cid != "" {
					return pass()
				}
				return fail("missing")
			},
			Message:        "Client ID ('cid') missing. Hits cannot be stitched into users and sessions.",
			Template:       "Client ID missing in {event_name} event.",
			Recommendation: "Check that the _ga cookie can be written; consent tooling sometimes blocks it.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference",
		},
		{
			ID:          "GA4-012",
			Name:        "Session ID Presence",
			Description: "Checks for the `sid` parameter carrying the session identifier.",
			Fields:      []string{"sid"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if sid, _ := paramString(e, "sid"); sid != "" {
					return pass()
				}
				return fail("missing")
			},
			Message:        "Session ID ('sid') missing from the hit.",
			Template:       "Session ID missing in {event_name} event.",
			Recommendation: "Verify the GA4 session cookie is being set before events fire.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/protocol/ga4/reference",
		},
		{
			ID:          "GA4-013",
			Name:        "Consent Signal Presence",
			Description: "Checks for the `gcs`/`gcd` consent mode signals.",
			Fields:      []string{"gcs", "gcd"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				for _, p := range []string{"gcs", "gcd"} {
					if _, ok := e.Param(p); ok {
						return pass()
					}
				}
				return fail("no consent signals detected")
			},
			Message:        "Consent Mode signals not detected.",
			Template:       "No consent signals in {event_name} event.",
			Recommendation: "Wire Consent Mode through your CMP so GA4 receives gcs/gcd signals.",
			DocURL:         "https://support.google.com/analytics/answer/9976101",
		},
		{
			ID:          "GA4-014",
			Name:        "page_view - Page Metadata",
			Description: "If `en=page_view`, checks for title (`dt`) and location (`dl`) parameters.",
			Fields:      []string{"dt", "dl"},
			AppliesTo:   []string{"page_view"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				var missing []string
				if dt, _ := paramString(e, "dt"); dt == "" {
					missing = append(missing, "dt")
				}
				if dl, _ := paramString(e, "dl"); dl == "" {
					missing = append(missing, "dl")
				}
				if len(missing) > 0 {
					return fail(strings.Join(missing, ", "))
				}
				return pass()
			},
			Message:        "Page metadata (title/location) missing from page_view.",
			Template:       "page_view missing page metadata: {detail}.",
			Recommendation: "Let gtag populate page_title and page_location, or set them explicitly for virtual pageviews.",
			DocURL:         "https://developers.google.com/analytics/devguides/collection/ga4/views",
		},
	}
}

// ga4HasItems reports an items payload: wire-encoded pr1..prN parameters or
// a literal items parameter.
func ga4HasItems(e *domain.NormalizedEvent) bool {
	if _, ok := firstParam(e, "items"); ok {
		return true
	}
	for key := range e.Params {
		if len(key) > 2 && strings.HasPrefix(key, "pr") && key[2] >= '0' && key[2] <= '9' {
			return true
		}
	}
	return false
}

// snakeCase turns a camel/Pascal-case event name into the snake_case form
// GA4 recommends.
func snakeCase(name string) string {
	parts := camelcase.Split(name)
	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}
	joined := strings.Join(parts, "_")
	return strings.ReplaceAll(joined, "__", "_")
}
