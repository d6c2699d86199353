package rules

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// ISO 4217 codes the engine recognizes (common subset). Three-letter codes
// outside this list still pass format validation.
var currencyCodes = map[string]bool{
	"USD": true, "EUR": true, "GBP": true, "JPY": true, "CAD": true,
	"AUD": true, "CHF": true, "CNY": true, "INR": true, "BRL": true,
	"MXN": true, "SGD": true, "HKD": true, "NOK": true, "SEK": true,
	"DKK": true, "NZD": true, "ZAR": true, "RUB": true, "KRW": true,
	"PLN": true, "THB": true, "IDR": true, "MYR": true, "PHP": true,
	"CZK": true, "HUF": true, "ILS": true, "CLP": true, "AED": true,
	"SAR": true, "TWD": true, "TRY": true, "VND": true, "PKR": true,
	"EGP": true, "NGN": true, "BDT": true, "ARS": true, "COP": true,
}

// FieldCheck is the outcome of a reusable sub-validation, shared by rules
// that inspect the same parameter shapes across vendors.
type FieldCheck struct {
	Valid   bool
	Status  domain.Status
	Message string
}

// CheckCurrency validates a currency code: exactly 3 alphabetic characters.
// A lowercase code is valid but flagged as a formatting warning carrying the
// uppercase suggestion; anything else is a hard failure.
func CheckCurrency(v any) FieldCheck {
	s, ok := asString(v)
	if !ok || s == "" {
		return FieldCheck{Status: domain.StatusError, Message: "Missing currency"}
	}
	if !isAlpha3(s) {
		return FieldCheck{Status: domain.StatusError, Message: "Invalid currency code format"}
	}
	upper := strings.ToUpper(s)
	if s != upper {
		return FieldCheck{Valid: true, Status: domain.StatusWarning, Message: "Should be uppercase: " + upper}
	}
	return FieldCheck{Valid: true, Status: domain.StatusSuccess}
}

// CheckMonetary validates a monetary amount: non-numeric fails, negative
// values are a warning only.
func CheckMonetary(v any) FieldCheck {
	if isBlank(v) {
		return FieldCheck{Status: domain.StatusError, Message: "Missing value"}
	}
	n, ok := asNumber(v)
	if !ok {
		return FieldCheck{Status: domain.StatusError, Message: "Value must be numeric"}
	}
	if n < 0 {
		return FieldCheck{Valid: true, Status: domain.StatusWarning, Message: "Negative value detected"}
	}
	return FieldCheck{Valid: true, Status: domain.StatusSuccess}
}

// CheckIDList validates an identifier list: a native array or a JSON-encoded
// string, every element a string or number.
func CheckIDList(v any) (bool, string) {
	items, detail, ok := asArray(v)
	if !ok {
		return false, detail
	}
	for _, item := range items {
		switch item.(type) {
		case string, float64, int, int64:
		default:
			return false, "contains non-string/number elements"
		}
	}
	return true, ""
}

// CheckContents validates a contents list: every element an object carrying
// at least id and quantity.
func CheckContents(v any) (bool, string) {
	items, detail, ok := asArray(v)
	if !ok {
		return false, detail
	}
	for _, item := range items {
		obj, isObj := item.(map[string]any)
		if !isObj {
			return false, "objects missing 'id' or 'quantity'"
		}
		if _, hasID := obj["id"]; !hasID {
			return false, "objects missing 'id' or 'quantity'"
		}
		if _, hasQty := obj["quantity"]; !hasQty {
			return false, "objects missing 'id' or 'quantity'"
		}
	}
	return true, ""
}

// asArray accepts a native []any or a JSON-encoded string array.
func asArray(v any) ([]any, string, bool) {
	switch t := v.(type) {
	case []any:
		return t, "", true
	case string:
		if !gjson.Valid(t) {
			return nil, "not valid JSON", false
		}
		parsed := gjson.Parse(t)
		if !parsed.IsArray() {
			return nil, "not an array", false
		}
		items := make([]any, 0, len(parsed.Array()))
		for _, r := range parsed.Array() {
			items = append(items, r.Value())
		}
		return items, "", true
	default:
		return nil, "not an array", false
	}
}

func asString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	default:
		return "", false
	}
}

func asNumber(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func isAlpha3(s string) bool {
	if len(s) != 3 {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

// paramString reads a parameter (including nested custom data) as a string.
func paramString(e *domain.NormalizedEvent, name string) (string, bool) {
	v, ok := e.Param(name)
	if !ok {
		return "", false
	}
	return asString(v)
}

// firstParam returns the first present parameter among aliases. Vendors often
// carry the same logical field under several wire names.
func firstParam(e *domain.NormalizedEvent, names ...string) (any, bool) {
	for _, name := range names {
		if v, ok := e.Param(name); ok && !isBlank(v) {
			return v, true
		}
	}
	return nil, false
}
