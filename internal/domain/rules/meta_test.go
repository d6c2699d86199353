package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagaudit/tagaudit/internal/domain"
)

var baseTime = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func metaEvent(id int, name string, params map[string]any) *domain.NormalizedEvent {
	if params == nil {
		params = map[string]any{}
	}
	return &domain.NormalizedEvent{
		EventID:   id,
		EventName: name,
		VendorKey: "meta",
		Timestamp: baseTime,
		URL:       "https://www.facebook.com/tr",
		Method:    "GET",
		Params:    params,
	}
}

func findRule(t *testing.T, catalog []Rule, id string) *Rule {
	t.Helper()
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	require.Failf(t, "rule not found", "no rule %s in catalog", id)
	return nil
}

func TestMetaPixelIDRule(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-001")

	e := metaEvent(1, "PageView", map[string]any{"id": "123456789012345"})
	assert.True(t, rule.Check(e, nil).Passed)

	e = metaEvent(1, "PageView", nil)
	res := rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "missing", res.Detail)

	e = metaEvent(1, "PageView", map[string]any{"id": "12345"})
	res = rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "invalid format", res.Detail)
}

func TestMetaPurchaseRequiredFields(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-008")

	e := metaEvent(1, "Purchase", nil)
	res := rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "value, currency", res.Detail)

	e = metaEvent(1, "Purchase", map[string]any{"value": "0", "currency": "EUR"})
	res = rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "value (must be > 0)", res.Detail)

	e = metaEvent(1, "Purchase", map[string]any{"value": "49.99", "currency": "EUR"})
	assert.True(t, rule.Check(e, nil).Passed)
}

func TestMetaDuplicatePageView(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-003")

	a := metaEvent(1, "PageView", map[string]any{"id": "123456789012345", "dl": "https://shop.example/"})
	b := metaEvent(2, "PageView", map[string]any{"id": "123456789012345", "dl": "https://shop.example/"})
	b.Timestamp = baseTime.Add(100 * time.Millisecond)
	batch := []*domain.NormalizedEvent{a, b}

	resA := rule.Check(a, batch)
	resB := rule.Check(b, batch)
	assert.False(t, resA.Passed)
	assert.False(t, resB.Passed)
	assert.Equal(t, "2 identical PageView events", resA.Detail)

	// Outside the window the second hit is a legitimate new pageview.
	b.Timestamp = baseTime.Add(2 * time.Second)
	assert.True(t, rule.Check(a, batch).Passed)

	// Different page, same timing: not a duplicate.
	b.Timestamp = baseTime.Add(100 * time.Millisecond)
	b.Params["dl"] = "https://shop.example/cart"
	assert.True(t, rule.Check(a, batch).Passed)
}

func TestMetaDuplicatePageViewSkipsOtherEvents(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-003")

	e := metaEvent(1, "Purchase", map[string]any{"id": "123456789012345"})
	res := rule.Check(e, []*domain.NormalizedEvent{e})
	assert.True(t, res.Skipped)
}

func TestMetaStandardEventVerification(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-004")

	assert.True(t, rule.Check(metaEvent(1, "AddToCart", nil), nil).Passed)

	res := rule.Check(metaEvent(1, "MyCustomEvent", nil), nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "MyCustomEvent", res.Detail)
}

func TestMetaMultiplePixelIDs(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-005")

	a := metaEvent(1, "PageView", map[string]any{"id": "123456789012345"})
	b := metaEvent(2, "PageView", map[string]any{"id": "543210987654321"})
	batch := []*domain.NormalizedEvent{a, b}

	res := rule.Check(a, batch)
	assert.False(t, res.Passed)
	assert.Equal(t, "123456789012345, 543210987654321", res.Detail)

	b.Params["id"] = "123456789012345"
	assert.True(t, rule.Check(a, batch).Passed)
}

func TestMetaContentTypeConditional(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-016")

	// Precondition absent: not applicable, not a pass.
	res := rule.Check(metaEvent(1, "PageView", nil), nil)
	assert.True(t, res.Skipped)

	e := metaEvent(1, "ViewContent", map[string]any{"content_ids": `["SKU1"]`})
	res = rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "content_type missing", res.Detail)

	e.Params["content_type"] = "product"
	assert.True(t, rule.Check(e, nil).Passed)

	e.Params["content_type"] = "sku"
	res = rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "invalid value: sku", res.Detail)
}

func TestMetaFbcConditionalOnFbclid(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-007")

	assert.True(t, rule.Check(metaEvent(1, "PageView", map[string]any{"dl": "https://shop.example/"}), nil).Skipped)

	e := metaEvent(1, "PageView", map[string]any{"dl": "https://shop.example/?fbclid=abc"})
	res := rule.Check(e, nil)
	assert.False(t, res.Passed)
	assert.Equal(t, "fbclid present but fbc missing", res.Detail)

	e.Params["fbc"] = "fb.1.1700000000000.abc123"
	assert.True(t, rule.Check(e, nil).Passed)
}

func TestMetaNestedCustomDataVisibleToRules(t *testing.T) {
	rule := findRule(t, metaRules(DefaultDuplicateWindow), "META-021")

	// contents living inside the decoded cd object is still found.
	e := metaEvent(1, "Purchase", map[string]any{
		"cd": map[string]any{"contents": `[{"id":"SKU1","quantity":1}]`},
	})
	assert.True(t, rule.Check(e, nil).Passed)
}
