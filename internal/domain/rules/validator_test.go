package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagaudit/tagaudit/internal/domain"
)

func metaCatalog() []Rule { return Catalog(Options{})["meta"] }

func TestValidateCleanPageView(t *testing.T) {
	e := metaEvent(1, "PageView", map[string]any{
		"id":  "123456789012345",
		"ev":  "PageView",
		"dl":  "https://shop.example/",
		"fbp": "fb.1.1111111111.2222222222",
		"em":  "b642b4217b34b1e8d3bd915fc65c4452",
		"coo": "false",
	})

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, metaCatalog())

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Empty(t, result.Issues)
	assert.Zero(t, result.Deduction)
	assert.Equal(t, 0, result.Scoring.WarningCount)
	assert.Equal(t, 0, result.Scoring.ErrorCount)
	assert.Equal(t, len(e.Params), result.Scoring.SuccessCount)
}

func TestValidatePurchaseMissingRequiredFields(t *testing.T) {
	catalog := []Rule{*findRule(t, metaCatalog(), "META-008")}
	e := metaEvent(1, "Purchase", nil)

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	assert.Equal(t, domain.StatusError, result.Status)
	require.Len(t, result.Issues, 1)
	assert.Equal(t, "META-008", result.Issues[0].RuleID)
	assert.Equal(t, 25, result.Deduction)
	assert.Equal(t, 75, domain.ScoreFromDeductions(result.Deduction))
}

func TestValidateSkipsInapplicableRules(t *testing.T) {
	// A PageView must never trigger Purchase-only rules.
	catalog := []Rule{*findRule(t, metaCatalog(), "META-008")}
	e := metaEvent(1, "PageView", nil)

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Empty(t, result.Issues)
}

func TestValidateOptimizationIssueDemotesToWarning(t *testing.T) {
	catalog := []Rule{*findRule(t, metaCatalog(), "META-006")}
	e := metaEvent(1, "PageView", map[string]any{"id": "123456789012345"})

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	assert.Equal(t, domain.StatusWarning, result.Status)
	assert.Equal(t, 1, result.Scoring.WarningCount)
	assert.Equal(t, 0, result.Scoring.ErrorCount)
}

func TestValidateCriticalOutweighsWarning(t *testing.T) {
	catalog := []Rule{
		*findRule(t, metaCatalog(), "META-006"),
		*findRule(t, metaCatalog(), "META-001"),
	}
	e := metaEvent(1, "PageView", nil)

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	assert.Equal(t, domain.StatusError, result.Status)
	assert.Equal(t, 1, result.Scoring.ErrorCount)
	assert.Equal(t, 1, result.Scoring.WarningCount)
}

func TestValidatePanickingRuleIsNotApplicable(t *testing.T) {
	catalog := []Rule{
		{
			ID:        "X-001",
			Fields:    []string{"x"},
			Severity:  domain.SeverityCritical,
			Deduction: 50,
			Check: func(e *domain.NormalizedEvent, _ []*domain.NormalizedEvent) CheckResult {
				panic("unexpected data shape")
			},
			Template: "boom",
		},
		*findRule(t, metaCatalog(), "META-001"),
	}
	e := metaEvent(1, "PageView", map[string]any{"id": "123456789012345"})

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	assert.Equal(t, domain.StatusSuccess, result.Status)
	assert.Empty(t, result.Issues)
	assert.Zero(t, result.Deduction)
}

func TestValidateParameterBreakdown(t *testing.T) {
	catalog := []Rule{*findRule(t, metaCatalog(), "META-008")}
	e := metaEvent(1, "Purchase", map[string]any{
		"id":       "123456789012345",
		"value":    "abc",
		"currency": "US",
	})

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, catalog)

	require.Len(t, result.Parameters, 3)
	// Sorted by name: currency, id, value.
	assert.Equal(t, "currency", result.Parameters[0].Name)
	assert.Equal(t, domain.StatusError, result.Parameters[0].Status)
	assert.Equal(t, "id", result.Parameters[1].Name)
	assert.Equal(t, domain.StatusSuccess, result.Parameters[1].Status)
	assert.Equal(t, "value", result.Parameters[2].Name)
	assert.Equal(t, domain.StatusError, result.Parameters[2].Status)

	assert.Equal(t, 1, result.Scoring.SuccessCount)
}

func TestValidateIssuePreviewCapped(t *testing.T) {
	e := metaEvent(1, "Purchase", nil)

	result := ValidateEvent(e, []*domain.NormalizedEvent{e}, metaCatalog())

	require.NotEmpty(t, result.Issues)
	assert.Len(t, result.IssuePreview, 3)
	assert.Contains(t, result.IssuePreview[0], "META-001: ")
	assert.Contains(t, result.IssuePreview[0], "...")
}

func TestValidateDeterministic(t *testing.T) {
	e := metaEvent(1, "Purchase", map[string]any{
		"id":       "123456789012345",
		"value":    "49.99",
		"currency": "usd",
	})
	batch := []*domain.NormalizedEvent{e}

	first := ValidateEvent(e, batch, metaCatalog())
	second := ValidateEvent(e, batch, metaCatalog())

	assert.Equal(t, first, second)
}
