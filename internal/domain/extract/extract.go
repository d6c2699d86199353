// Package extract flattens a captured request's query string and body into
// the parameter map the rule engine validates.
//
// Extraction is two-pass: flat query parameters first, then vendor-specific
// expansion of nested blobs (Meta encodes its custom data as a
// percent-encoded JSON object inside the cd parameter). Decode failures are
// swallowed: the raw value stays in the map and the audit continues.
package extract

import (
	"net/url"
	"strings"

	"github.com/tidwall/gjson"
)

// RawBodyKey holds a POST body that parsed neither as JSON nor as form data.
const RawBodyKey = "_raw_body"

// Extract parses the request's query string and POST body into a flat
// key->value map. Query parameters win over body-derived keys; nested
// custom-data keys are merged in addition to (not instead of) the blob
// they came from. Never returns nil and never fails.
func Extract(rawURL, rawQuery, postBody, vendorKey string) map[string]any {
	params := make(map[string]any)

	mergeQuery(params, rawQuery)
	if q := queryOf(rawURL); q != "" && q != rawQuery {
		mergeQuery(params, q)
	}

	expandNested(params, vendorKey)
	mergeBody(params, postBody)

	return params
}

// queryOf returns the raw query portion of a URL, empty when unparseable.
func queryOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		// Malformed URLs still often carry a literal query part.
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			return rawURL[i+1:]
		}
		return ""
	}
	return u.RawQuery
}

// mergeQuery adds decoded query pairs, keeping existing keys untouched.
func mergeQuery(params map[string]any, rawQuery string) {
	if rawQuery == "" {
		return
	}
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		// ParseQuery reports the first bad pair but still returns the
		// rest; keep whatever decoded.
		if len(values) == 0 {
			return
		}
	}
	for key, vs := range values {
		if _, exists := params[key]; exists || len(vs) == 0 {
			continue
		}
		params[key] = vs[0]
	}
}

// expandNested merges vendor-encoded JSON blob parameters into the flat map.
// Only Meta is known to nest structured data this way (cd for custom data,
// ud for advanced matching).
func expandNested(params map[string]any, vendorKey string) {
	if vendorKey != "meta" {
		return
	}
	for _, key := range []string{"cd", "ud"} {
		raw, ok := params[key].(string)
		if !ok || raw == "" {
			continue
		}
		decoded := raw
		if unescaped, err := url.QueryUnescape(raw); err == nil {
			decoded = unescaped
		}
		if !gjson.Valid(decoded) {
			continue
		}
		parsed := gjson.Parse(decoded)
		if !parsed.IsObject() {
			continue
		}
		nested := make(map[string]any)
		parsed.ForEach(func(k, v gjson.Result) bool {
			nested[k.String()] = v.Value()
			if _, exists := params[k.String()]; !exists {
				params[k.String()] = v.Value()
			}
			return true
		})
		params[key] = nested
	}
}

// mergeBody parses a POST body as JSON, then as form data, then keeps it raw.
func mergeBody(params map[string]any, body string) {
	if body == "" {
		return
	}

	if gjson.Valid(body) {
		parsed := gjson.Parse(body)
		if parsed.IsObject() {
			parsed.ForEach(func(k, v gjson.Result) bool {
				if _, exists := params[k.String()]; !exists {
					params[k.String()] = v.Value()
				}
				return true
			})
			return
		}
	}

	if values, err := url.ParseQuery(body); err == nil && len(values) > 0 && looksLikeForm(body) {
		for key, vs := range values {
			if _, exists := params[key]; exists || len(vs) == 0 {
				continue
			}
			params[key] = vs[0]
		}
		return
	}

	if _, exists := params[RawBodyKey]; !exists {
		params[RawBodyKey] = body
	}
}

// looksLikeForm filters out plain-text bodies that url.ParseQuery would
// happily turn into a single valueless key.
func looksLikeForm(body string) bool {
	return strings.ContainsAny(body, "=&")
}
