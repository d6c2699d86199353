package rules

import (
	"strings"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// tiktokRules builds the TikTok Pixel catalog.
func tiktokRules() []Rule {
	return []Rule{
		{
			ID:          "TT-001",
			Name:        "Pixel Code Presence",
			Description: "Checks that the `sdkid` parameter (Pixel Code) is present.",
			Fields:      []string{"sdkid"},
			Severity:    domain.SeverityCritical,
			Deduction:   30,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "sdkid", "pixel_code"); ok {
					return pass()
				}
				return fail("missing")
			},
			Message:        "TikTok Pixel Code missing. Events will not reach the pixel.",
			Template:       "TikTok Pixel Code missing in {event_name} event.",
			Recommendation: "Check the TikTok Pixel base code installation and confirm the pixel code is configured.",
			DocURL:         "https://ads.tiktok.com/help/article/get-started-pixel",
		},
		{
			ID:          "TT-002",
			Name:        "Event Name Presence",
			Description: "Checks that the `event` parameter is present and not empty.",
			Fields:      []string{"event"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if ev, _ := paramString(e, "event"); ev != "" {
					return pass()
				}
				if e.EventName != "" {
					return pass()
				}
				return fail("")
			},
			Message:        "Event name missing. TikTok cannot identify the tracked action.",
			Template:       "Event name missing from TikTok request on {url}.",
			Recommendation: "Make sure each ttq.track(...) call includes the event name.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
		{
			ID:          "TT-003",
			Name:        "CompletePayment - Required Fields",
			Description: "If `event=CompletePayment`, checks that value, currency and contents are present.",
			Fields:      []string{"value", "currency", "contents"},
			AppliesTo:   []string{"CompletePayment"},
			Severity:    domain.SeverityCritical,
			Deduction:   25,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				var missing []string
				if v, ok := firstParam(e, "value"); !ok {
					missing = append(missing, "value")
				} else if n, numeric := asNumber(v); !numeric || n <= 0 {
					missing = append(missing, "value (must be > 0)")
				}
				if cu, ok := paramString(e, "currency"); !ok || !isAlpha3(cu) {
					missing = append(missing, "currency")
				}
				if _, ok := firstParam(e, "contents"); !ok {
					missing = append(missing, "contents")
				}
				if len(missing) > 0 {
					return fail(strings.Join(missing, ", "))
				}
				return pass()
			},
			Message:        "REQUIRED transaction data missing/invalid for CompletePayment event.",
			Template:       "CompletePayment event missing required data: {detail}.",
			Recommendation: "The value, currency and contents parameters are required for CompletePayment. Make sure they are always transmitted.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
		{
			ID:          "TT-004",
			Name:        "Ecom - Contents Presence",
			Description: "If `event` is `AddToCart`, `ViewContent` or `InitiateCheckout`, checks that `contents` is present.",
			Fields:      []string{"contents"},
			AppliesTo:   []string{"AddToCart", "ViewContent", "InitiateCheckout"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "contents"); ok {
					return pass()
				}
				return fail("contents not found")
			},
			Message:        "Contents missing. Required for catalog-based TikTok ads.",
			Template:       "Contents missing for '{event_name}' event.",
			Recommendation: "Include product contents for key e-commerce events to enable catalog ads and detailed reporting.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
		{
			ID:          "TT-005",
			Name:        "Contents Format Validation",
			Description: "Checks if `contents` is a valid array of objects containing at least `id` and `quantity`.",
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
			Message:        "The format of the 'contents' parameter is invalid.",
			Template:       "'contents' format issue: {detail}.",
			Recommendation: "Send contents as an array of objects, each with at least the 'id' and 'quantity' keys.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
		{
			ID:          "TT-006",
			Name:        "Value Type Validation",
			Description: "Checks if the `value` parameter, when present, contains a valid numeric value.",
			Fields:      []string{"value"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				v, ok := firstParam(e, "value")
				if !ok {
					return skip()
				}
				if check := CheckMonetary(v); !check.Valid {
					s, _ := asString(v)
					return fail(s)
				}
				return pass()
			},
			Message:        "The 'value' parameter contains a non-numeric value.",
			Template:       "Invalid 'value' parameter: '{detail}'.",
			Recommendation: "Make sure the value parameter always contains a number.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
		{
			ID:          "TT-007",
			Name:        "Currency Type Validation",
			Description: "Checks if the `currency` parameter, when present, is a valid ISO 4217 code.",
			Fields:      []string{"currency"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				cu, ok := firstParam(e, "currency")
				if !ok {
					return skip()
				}
				if check := CheckCurrency(cu); !check.Valid {
					s, _ := asString(cu)
					return fail(s)
				}
				return pass()
			},
			Message:        "The 'currency' parameter contains an invalid code.",
			Template:       "Invalid 'currency' parameter: '{detail}'.",
			Recommendation: "Use a standard ISO 4217 currency code (3 letters) for the currency parameter.",
			DocURL:         "https://ads.tiktok.com/help/article/standard-events-parameters",
		},
	}
}
