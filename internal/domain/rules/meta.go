package rules

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// Meta Pixel standard events.
var metaStandardEvents = map[string]bool{
	"PageView": true, "ViewContent": true, "Search": true, "AddToCart": true,
	"AddToWishlist": true, "InitiateCheckout": true, "AddPaymentInfo": true,
	"Purchase": true, "Lead": true, "CompleteRegistration": true,
	"Contact": true, "CustomizeProduct": true, "Donate": true,
	"FindLocation": true, "Schedule": true, "StartTrial": true,
	"SubmitApplication": true, "Subscribe": true,
}

var (
	metaPixelIDRe = regexp.MustCompile(`^\d{15,16}$`)
	metaFbpRe     = regexp.MustCompile(`^fb\.\d\.\d+\.\d+$`)
	metaFbcRe     = regexp.MustCompile(`^fb\.\d\.\d+\.`)
)

var metaAdvancedMatching = []string{"em", "ph", "fn", "ln", "ge", "db", "ct", "st", "zp", "country"}
var metaConsentParams = []string{"coo", "npa", "gdpr", "gdpr_consent", "consent"}

// metaRules builds the Meta Pixel catalog. window bounds the duplicate
// PageView detection.
func metaRules(window time.Duration) []Rule {
	return []Rule{
		{
			ID:          "META-001",
			Name:        "Pixel ID Presence",
			Description: "Checks if the `id` parameter (Pixel ID) is present, not empty and numeric.",
			Fields:      []string{"id"},
			Severity:    domain.SeverityCritical,
			Deduction:   30,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				id, ok := paramString(e, "id")
				if !ok || id == "" {
					return fail("missing")
				}
				if !metaPixelIDRe.MatchString(id) {
					return fail("invalid format")
				}
				return pass()
			},
			Message:        "Meta Pixel ID missing or invalid. The event will not be attributed.",
			Template:       "Meta Pixel ID missing or invalid in {event_name} event.",
			Recommendation: "Check the Pixel base code installation. Make sure your Pixel ID is correctly configured and included.",
			DocURL:         "https://www.facebook.com/business/help/952192354843755",
		},
		{
			ID:          "META-002",
			Name:        "Event Name Presence",
			Description: "Checks if the `ev` parameter (Event Name) is present and not empty.",
			Fields:      []string{"ev"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if ev, _ := paramString(e, "ev"); ev != "" {
					return pass()
				}
				if e.EventName != "" {
					return pass()
				}
				return fail("")
			},
			Message:        "Event name ('ev') missing. Meta cannot identify the tracked action.",
			Template:       "Event name missing from Meta Pixel request on {url}.",
			Recommendation: "Make sure each `fbq('track', ...)` call includes the standard or custom event name.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#standard-events",
		},
		{
			ID:          "META-003",
			Name:        "Duplicate PageView Event",
			Description: "Detects if the `PageView` event is sent multiple times identically during the same page load.",
			Fields:      []string{"id", "ev", "dl"},
			Severity:    domain.SeverityCritical,
			Deduction:   25,
			Check: func(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) CheckResult {
				if e.EventName != "PageView" {
					return skip()
				}
				pageURL := eventURL(e)
				pixelID, _ := paramString(e, "id")
				duplicates := 0
				for _, other := range batch {
					if other.EventID == e.EventID || other.EventName != "PageView" {
						continue
					}
					otherID, _ := paramString(other, "id")
					if eventURL(other) != pageURL || otherID != pixelID {
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
					return fail(plural(duplicates+1, "identical PageView event"))
				}
				return pass()
			},
			Message:        "PageView event triggered multiple times on the same page. Risk of skewing statistics.",
			Template:       "Duplicate PageView event detected on {url}.",
			Recommendation: "Check your Tag Manager or code to avoid multiple triggers of the PageView tag. Make sure it only triggers once per page load.",
			DocURL:         "https://www.facebook.com/business/help/952192354843755",
		},
		{
			ID:          "META-004",
			Name:        "Standard Event Verification",
			Description: "Checks if the `ev` value corresponds to a known standard event.",
			Fields:      []string{"ev"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if e.EventName == "" {
					return skip()
				}
				if metaStandardEvents[e.EventName] {
					return pass()
				}
				// Custom events are fine, flag for awareness only.
				return fail(e.EventName)
			},
			Message:        "Event '{event_name}' is non-standard. (Ok if it's a custom event).",
			Template:       "Event '{event_name}' is not a standard Meta event.",
			Recommendation: "Use standard events when possible to benefit from Meta optimizations. Check the spelling of standard events.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#standard-events",
		},
		{
			ID:          "META-005",
			Name:        "Multiple Different Pixel IDs",
			Description: "Detects if requests with different Pixel `id`s are sent from the same site.",
			Fields:      []string{"id"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) CheckResult {
				if id, _ := paramString(e, "id"); id == "" {
					return skip()
				}
				seen := make(map[string]bool)
				var unique []string
				for _, other := range batch {
					id, _ := paramString(other, "id")
					if id == "" || seen[id] {
						continue
					}
					seen[id] = true
					unique = append(unique, id)
				}
				if len(unique) > 1 {
					return fail(strings.Join(unique, ", "))
				}
				return pass()
			},
			Message:        "Multiple different Meta Pixel IDs detected.",
			Template:       "Multiple Pixel IDs detected: {detail}.",
			Recommendation: "Confirm if using multiple Pixels is intentional (e.g., agency). Otherwise, remove redundant Pixels to avoid data fragmentation.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/get-started",
		},
		{
			ID:          "META-006",
			Name:        "FBP Parameter Presence",
			Description: "Checks if the `fbp` parameter (`_fbp` cookie) is present and correctly formatted.",
			Fields:      []string{"fbp"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				fbp, ok := paramString(e, "fbp")
				if !ok || fbp == "" {
					return fail("missing")
				}
				if !metaFbpRe.MatchString(fbp) {
					return fail("invalid format")
				}
				return pass()
			},
			Message:        "'fbp' parameter missing or invalid. May reduce Meta's matching capability.",
			Template:       "'fbp' parameter missing or invalid in {event_name} event.",
			Recommendation: "Make sure the `_fbp` cookie is correctly created. Check cookie/script policies.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/implementation/cookie-usage#_fbp-cookie",
		},
		{
			ID:          "META-007",
			Name:        "FBC Parameter Presence",
			Description: "Checks if `fbc` (`_fbc` cookie) is present if `fbclid` was in the landing URL.",
			Fields:      []string{"fbc"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if !strings.Contains(eventURL(e), "fbclid=") {
					return skip()
				}
				fbc, ok := paramString(e, "fbc")
				if !ok || fbc == "" {
					return fail("fbclid present but fbc missing")
				}
				if !metaFbcRe.MatchString(fbc) {
					return fail("invalid format")
				}
				return pass()
			},
			Message:        "'fbc' parameter missing when `fbclid` was present. May affect ad click attribution.",
			Template:       "'fbc' parameter missing on {url} where fbclid was present.",
			Recommendation: "Check that the Pixel loads early enough to capture the `fbclid` and generate the `_fbc` cookie.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/implementation/cookie-usage#_fbc-cookie",
		},
		{
			ID:          "META-008",
			Name:        "Purchase - Value/Currency (Required)",
			Description: "If `ev=Purchase`, checks that `value` (>0) and `currency` (valid) are present (Required by Meta).",
			Fields:      []string{"value", "currency"},
			AppliesTo:   []string{"Purchase"},
			Severity:    domain.SeverityCritical,
			Deduction:   25,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				var missing []string
				value, hasValue := e.Param("value")
				if !hasValue || isBlank(value) {
					missing = append(missing, "value")
				} else if n, ok := asNumber(value); !ok || n <= 0 {
					missing = append(missing, "value (must be > 0)")
				}
				currency, hasCurrency := paramString(e, "currency")
				if !hasCurrency || currency == "" {
					missing = append(missing, "currency")
				} else if !isAlpha3(currency) {
					missing = append(missing, "currency (invalid ISO code)")
				}
				if len(missing) > 0 {
					return fail(strings.Join(missing, ", "))
				}
				return pass()
			},
			Message:        "REQUIRED transaction data missing/invalid for Purchase event.",
			Template:       "Purchase event missing required data: {detail}.",
			Recommendation: "The `value` and `currency` parameters are MANDATORY for the `Purchase` event. Make sure they are always transmitted and correct.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#purchase",
		},
		{
			ID:          "META-009",
			Name:        "Ecom - Content (Dyn. Ads)",
			Description: "If `ev` is `ViewContent`, `AddToCart`, `Purchase`, `Search`, checks that `content_ids` or `contents` is present (Required for Dynamic Ads).",
			Fields:      []string{"content_ids", "contents"},
			AppliesTo:   []string{"ViewContent", "AddToCart", "Purchase", "Search"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				_, hasIDs := firstParam(e, "content_ids")
				_, hasContents := firstParam(e, "contents")
				if !hasIDs && !hasContents {
					return fail("neither content_ids nor contents found")
				}
				return pass()
			},
			Message:        "Content IDs ('content_ids' or 'contents') missing. Required for dynamic ads.",
			Template:       "Content IDs missing for '{event_name}' event.",
			Recommendation: "Include product IDs for key e-commerce events to enable dynamic retargeting and detailed reporting. Check the format.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/implementation/commerce",
		},
		{
			ID:          "META-010",
			Name:        "Advanced Matching Parameters Check",
			Description: "Checks the presence of Advanced Matching parameters (e.g., `em`, `ph`).",
			Fields:      metaAdvancedMatching,
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				for _, p := range metaAdvancedMatching {
					if v, ok := e.Param(p); ok && !isBlank(v) {
						return pass()
					}
				}
				return fail("no advanced matching params found")
			},
			Message:        "No Advanced Matching parameters detected (e.g., email, phone).",
			Template:       "No Advanced Matching parameters in {event_name} event.",
			Recommendation: "If you use Advanced Matching, make sure parameters are correctly hashed and sent (e.g., `fbq('init', 'ID', {em: '...'});`).",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/implementation/advanced-matching",
		},
		{
			ID:          "META-011",
			Name:        "Consent Parameters Check",
			Description: "Checks the presence/value of consent-related parameters.",
			Fields:      []string{"coo", "npa", "gdpr_consent"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				for _, p := range metaConsentParams {
					if _, ok := e.Param(p); ok {
						return pass()
					}
				}
				return fail("no consent parameters detected")
			},
			Message:        "Consent parameters not detected or potentially incorrect.",
			Template:       "No consent parameters in {event_name} event.",
			Recommendation: "Check your Pixel integration with your CMP to ensure GDPR/ePrivacy compliance.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/implementation/gdpr",
		},
		{
			ID:          "META-012",
			Name:        "Request Method Verification",
			Description: "Checks if the HTTP method (GET/POST) is appropriate.",
			Fields:      []string{"method"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				method := strings.ToUpper(e.Method)
				if method == "" {
					method = "GET"
				}
				if method == "GET" || method == "POST" {
					return passed(method)
				}
				return fail(method)
			},
			Message:        "Request uses unexpected HTTP method.",
			Template:       "Request uses {detail} method.",
			Recommendation: "GET is common. POST is possible. Make sure the method is appropriate and does not cause data loss if the GET URL is too long.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference",
		},
		{
			ID:          "META-013",
			Name:        "InitiateCheckout - Num Items",
			Description: "If `ev=InitiateCheckout`, checks for the presence of the `num_items` parameter.",
			Fields:      []string{"num_items"},
			AppliesTo:   []string{"InitiateCheckout"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				numItems, ok := firstParam(e, "num_items")
				if !ok {
					return fail("")
				}
				if n, numeric := asNumber(numItems); !numeric || n != float64(int64(n)) {
					return fail("not an integer")
				}
				return pass()
			},
			Message:        "'num_items' parameter missing for InitiateCheckout event.",
			Template:       "'num_items' missing for InitiateCheckout on {url}.",
			Recommendation: "Add the `num_items` parameter to the `InitiateCheckout` event to indicate the number of items in the cart.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#initiatecheckout",
		},
		{
			ID:          "META-014",
			Name:        "Search - Search String",
			Description: "If `ev=Search`, checks for the presence of the `search_string` parameter.",
			Fields:      []string{"search_string"},
			AppliesTo:   []string{"Search"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "search_string"); !ok {
					return fail("")
				}
				return pass()
			},
			Message:        "'search_string' parameter missing for Search event.",
			Template:       "'search_string' missing for Search event on {url}.",
			Recommendation: "Add the `search_string` parameter to the `Search` event to record the term searched by the user.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#search",
		},
		{
			ID:          "META-015",
			Name:        "Subscribe/StartTrial - Value",
			Description: "If `ev=Subscribe` or `StartTrial`, checks for the presence of `value` or `predicted_ltv`.",
			Fields:      []string{"value", "predicted_ltv"},
			AppliesTo:   []string{"Subscribe", "StartTrial"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				for _, name := range []string{"value", "predicted_ltv"} {
					if v, ok := firstParam(e, name); ok {
						if _, numeric := asNumber(v); numeric {
							return pass()
						}
					}
				}
				return fail("")
			},
			Message:        "'value' or 'predicted_ltv' parameter missing for subscription event.",
			Template:       "'value' or 'predicted_ltv' missing for {event_name} event.",
			Recommendation: "Add `value` (monetary value) or `predicted_ltv` (predicted lifetime value) to `Subscribe` or `StartTrial` events to measure their impact.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#subscribe",
		},
		{
			ID:          "META-016",
			Name:        "Ecom - Content Type",
			Description: "If `content_ids` or `contents` is present, checks that `content_type` ('product' or 'product_group') is also present.",
			Fields:      []string{"content_type"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				_, hasIDs := firstParam(e, "content_ids")
				_, hasContents := firstParam(e, "contents")
				if !hasIDs && !hasContents {
					return skip()
				}
				contentType, ok := paramString(e, "content_type")
				if !ok || contentType == "" {
					return fail("content_type missing")
				}
				if contentType != "product" && contentType != "product_group" {
					return fail("invalid value: " + contentType)
				}
				return pass()
			},
			Message:        "'content_type' parameter missing or invalid when 'content_ids'/'contents' is present.",
			Template:       "'content_type' issue in {event_name}: {detail}.",
			Recommendation: "Specify `content_type` ('product' or 'product_group') when sending `content_ids` or `contents` to improve the accuracy of dynamic ads.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#object-properties",
		},
		{
			ID:          "META-017",
			Name:        "Event ID Presence (Deduplication)",
			Description: "Checks for the presence of the `eventID` parameter used for deduplication with the Conversions API.",
			Fields:      []string{"eid", "eventID"},
			AppliesTo:   []string{"Purchase", "Lead", "AddToCart", "InitiateCheckout", "CompleteRegistration", "ViewContent"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "eid", "eventID", "event_id"); !ok {
					return fail("")
				}
				return pass()
			},
			Message:        "'eventID' parameter missing. Useful for deduplication with the Conversions API.",
			Template:       "'eventID' missing for {event_name} event.",
			Recommendation: "If you use the Conversions API alongside the Pixel, add a unique `eventID` to each event to enable deduplication by Meta.",
			DocURL:         "https://developers.facebook.com/docs/marketing-api/conversions-api/deduplicate-pixel-and-server-events",
		},
		{
			ID:          "META-018",
			Name:        "Value Type Validation",
			Description: "Checks if the `value` parameter, when present, contains a valid numeric value.",
			Fields:      []string{"value"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				value, ok := firstParam(e, "value")
				if !ok {
					return skip()
				}
				if _, numeric := asNumber(value); !numeric {
					s, _ := asString(value)
					return fail(s)
				}
				return pass()
			},
			Message:        "The 'value' parameter contains a non-numeric value.",
			Template:       "Invalid 'value' parameter: '{detail}'.",
			Recommendation: "Make sure the `value` parameter always contains a number (integer or decimal). Use a period as the decimal separator.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#object-properties",
		},
		{
			ID:          "META-019",
			Name:        "Currency Type Validation",
			Description: "Checks if the `currency` parameter, when present, contains a valid ISO 4217 currency code (3 letters).",
			Fields:      []string{"currency"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				currency, ok := firstParam(e, "currency")
				if !ok {
					return skip()
				}
				s, _ := asString(currency)
				if !isAlpha3(s) {
					return fail(s)
				}
				if !currencyCodes[strings.ToUpper(s)] {
					// Valid format, just not in the common list.
					return passed("uncommon currency code")
				}
				return pass()
			},
			Message:        "The 'currency' parameter contains an invalid code. Must be an ISO 4217 code (e.g., EUR, USD).",
			Template:       "Invalid 'currency' parameter: '{detail}'.",
			Recommendation: "Always use a standard ISO 4217 currency code (3 uppercase letters) for the `currency` parameter.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#object-properties",
		},
		{
			ID:          "META-020",
			Name:        "Content IDs Format Validation",
			Description: "Checks if `content_ids` is a valid JSON array of strings or numbers.",
			Fields:      []string{"content_ids"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				contentIDs, ok := firstParam(e, "content_ids")
				if !ok {
					return skip()
				}
				if valid, detail := CheckIDList(contentIDs); !valid {
					return fail(detail)
				}
				return pass()
			},
			Message:        "The format of the 'content_ids' parameter is invalid. Must be a JSON array (e.g., ['ID1', 'ID2']).",
			Template:       "'content_ids' format issue: {detail}.",
			Recommendation: "Make sure `content_ids` is correctly formatted as a JSON array of strings or numbers representing product IDs.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#object-properties",
		},
		{
			ID:          "META-021",
			Name:        "Contents Format Validation",
			Description: "Checks if `contents` is a valid JSON array of objects containing at least `id` and `quantity`.",
			Fields:      []string{"contents"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				contents, ok := firstParam(e, "contents")
				if !ok {
					return skip()
				}
				if valid, detail := CheckContents(contents); !valid {
					return fail(detail)
				}
				return pass()
			},
			Message:        "The format of the 'contents' parameter is invalid. Must be a JSON array of objects (e.g., [{'id':'ID1', 'quantity':1}]).",
			Template:       "'contents' format issue: {detail}.",
			Recommendation: "Make sure `contents` is correctly formatted as a JSON array of objects, each object containing at least the 'id' and 'quantity' keys.",
			DocURL:         "https://developers.facebook.com/docs/meta-pixel/reference#object-properties",
		},
	}
}

func plural(n int, noun string) string {
	s := noun
	if n != 1 {
		s += "s"
	}
	return strconv.Itoa(n) + " " + s
}
