package rules

import (
	"regexp"
	"strings"

	"github.com/tagaudit/tagaudit/internal/domain"
)

var gadsConversionPathRe = regexp.MustCompile(`/pagead/(?:viewthrough)?conversion/(\d+)`)

var gadsEcommParams = []string{"ecomm_prodid", "ecomm_pagetype", "ecomm_totalvalue"}

// gadsRules builds the Google Ads conversion/remarketing catalog.
func gadsRules() []Rule {
	return []Rule{
		{
			ID:          "GADS-001",
			Name:        "Conversion ID Presence",
			Description: "Checks that a conversion ID is present, either as a parameter or in the request path.",
			Fields:      []string{"google_conversion_id"},
			Severity:    domain.SeverityCritical,
			Deduction:   30,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "google_conversion_id", "aw_conversion_id"); ok {
					return pass()
				}
				if gadsConversionPathRe.MatchString(e.URL) {
					return pass()
				}
				return fail("missing")
			},
			Message:        "Google Ads conversion ID missing. The conversion cannot be attributed to an account.",
			Template:       "Conversion ID missing in {event_name} request.",
			Recommendation: "Check the gtag or conversion tag installation and confirm the AW-XXXXXXXXX ID is configured.",
			DocURL:         "https://support.google.com/google-ads/answer/6095821",
		},
		{
			ID:          "GADS-002",
			Name:        "Conversion Label Presence",
			Description: "For conversion requests, checks that the `label` parameter is present.",
			Fields:      []string{"label"},
			AppliesTo:   []string{"conversion"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "label", "conversion_label"); ok {
					return pass()
				}
				return fail("missing")
			},
			Message:        "Conversion label missing. Google Ads cannot tell conversion actions apart.",
			Template:       "Conversion label missing on {url}.",
			Recommendation: "Copy the conversion label from the Google Ads conversion action setup into your tag.",
			DocURL:         "https://support.google.com/google-ads/answer/6095821",
		},
		{
			ID:          "GADS-003",
			Name:        "Conversion - Value/Currency",
			Description: "For conversion requests, checks that value and currency_code are present.",
			Fields:      []string{"value", "currency_code"},
			AppliesTo:   []string{"conversion"},
			Severity:    domain.SeverityImportant,
			Deduction:   15,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				var missing []string
				if _, ok := firstParam(e, "value", "conversion_value"); !ok {
					missing = append(missing, "value")
				}
				if _, ok := firstParam(e, "currency_code", "currency"); !ok {
					missing = append(missing, "currency_code")
				}
				if len(missing) > 0 {
					return fail(strings.Join(missing, ", "))
				}
				return pass()
			},
			Message:        "Conversion value or currency missing. Value-based bidding will underperform.",
			Template:       "Conversion missing {detail} on {url}.",
			Recommendation: "Send value and currency_code with every conversion so smart bidding can optimize on revenue.",
			DocURL:         "https://support.google.com/google-ads/answer/6095947",
		},
		{
			ID:          "GADS-004",
			Name:        "Value Type Validation",
			Description: "Checks if the conversion value, when present, is numeric.",
			Fields:      []string{"value"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				v, ok := firstParam(e, "value", "conversion_value")
				if !ok {
					return skip()
				}
				if check := CheckMonetary(v); !check.Valid {
					s, _ := asString(v)
					return fail(s)
				}
				return pass()
			},
			Message:        "The conversion value is not numeric.",
			Template:       "Invalid conversion value: '{detail}'.",
			Recommendation: "Send the conversion value as a plain number with a period decimal separator.",
			DocURL:         "https://support.google.com/google-ads/answer/6095947",
		},
		{
			ID:          "GADS-005",
			Name:        "Currency Format Validation",
			Description: "Checks if currency_code, when present, is a valid ISO 4217 code.",
			Fields:      []string{"currency_code"},
			Severity:    domain.SeverityImportant,
			Deduction:   10,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				cu, ok := firstParam(e, "currency_code", "currency")
				if !ok {
					return skip()
				}
				if check := CheckCurrency(cu); !check.Valid {
					s, _ := asString(cu)
					return fail(s)
				}
				return pass()
			},
			Message:        "The currency_code parameter contains an invalid code.",
			Template:       "Invalid currency_code: '{detail}'.",
			Recommendation: "Use a 3-letter ISO 4217 code (e.g., EUR, USD) for currency_code.",
			DocURL:         "https://support.google.com/google-ads/answer/6095947",
		},
		{
			ID:          "GADS-006",
			Name:        "Remarketing - Ecomm Parameters",
			Description: "For remarketing requests, checks for dynamic remarketing parameters (ecomm_prodid, ...).",
			Fields:      gadsEcommParams,
			AppliesTo:   []string{"remarketing"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				for _, p := range gadsEcommParams {
					if v, ok := e.Param(p); ok && !isBlank(v) {
						return pass()
					}
				}
				// Some setups pack these into the data parameter.
				if data, _ := paramString(e, "data"); strings.Contains(data, "ecomm_") {
					return pass()
				}
				return fail("no ecomm parameters found")
			},
			Message:        "No dynamic remarketing parameters detected.",
			Template:       "No ecomm parameters in remarketing request on {url}.",
			Recommendation: "Add ecomm_prodid, ecomm_pagetype and ecomm_totalvalue to power dynamic remarketing ads.",
			DocURL:         "https://support.google.com/google-ads/answer/7305793",
		},
		{
			ID:          "GADS-007",
			Name:        "Transaction ID (Deduplication)",
			Description: "For conversion requests, checks for a transaction ID used to deduplicate conversions.",
			Fields:      []string{"oid", "transaction_id"},
			AppliesTo:   []string{"conversion"},
			Severity:    domain.SeverityOptimization,
			Deduction:   5,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				if _, ok := firstParam(e, "oid", "transaction_id"); ok {
					return pass()
				}
				return fail("")
			},
			Message:        "Transaction ID missing. Repeated conversions cannot be deduplicated.",
			Template:       "Transaction ID missing for conversion on {url}.",
			Recommendation: "Pass a unique order/transaction ID with each conversion to avoid double counting.",
			DocURL:         "https://support.google.com/google-ads/answer/6386790",
		},
	}
}
