package rules

import (
	"sort"

	"github.com/tagaudit/tagaudit/internal/domain"
)

const previewLimit = 3

// ValidateEvent runs every applicable catalog rule against one event and
// assembles its result: accumulated issues, score deduction, status and a
// per-parameter breakdown.
//
// A panicking check is treated as not applicable for this event; one
// misbehaving rule must not take down the audit.
func ValidateEvent(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent, catalog []Rule) *domain.EventResult {
	result := &domain.EventResult{
		EventID:      e.EventID,
		EventName:    e.EventName,
		Timestamp:    e.TimestampString(),
		URL:          eventURL(e),
		IssuePreview: []string{},
		Parameters:   []domain.ParamResult{},
		Issues:       []domain.Issue{},
	}

	var critical, important, optimization int
	fieldIssues := make(map[string]*domain.Issue)

	for i := range catalog {
		rule := &catalog[i]
		if !rule.Applies(e.EventName) {
			continue
		}
		res := runCheck(rule, e, batch)
		if res.Skipped || res.Passed {
			continue
		}

		issue := domain.Issue{
			RuleID:         rule.ID,
			Type:           domain.IssueRuleViolation,
			Severity:       rule.Severity,
			Field:          rule.FieldLabel(),
			Message:        Interpolate(rule.Template, e, res),
			Description:    rule.Description,
			Recommendation: rule.Recommendation,
			DocURL:         rule.DocURL,
			Deduction:      rule.Deduction,
		}
		result.Issues = append(result.Issues, issue)
		result.Deduction += rule.Deduction

		switch rule.Severity {
		case domain.SeverityCritical:
			critical++
		case domain.SeverityImportant:
			important++
		default:
			optimization++
		}

		last := &result.Issues[len(result.Issues)-1]
		for _, f := range rule.Fields {
			if _, taken := fieldIssues[f]; !taken {
				fieldIssues[f] = last
			}
		}
	}

	result.Status = domain.StatusFor(critical, important, optimization)
	result.Parameters = paramBreakdown(e, fieldIssues)
	result.IssuePreview = issuePreview(result.Issues)
	result.Scoring = domain.ScoreCounts{
		SuccessCount: countSuccess(result.Parameters),
		WarningCount: important + optimization,
		ErrorCount:   critical,
	}
	return result
}

// runCheck shields the audit from a panicking rule.
func runCheck(rule *Rule, e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) (res CheckResult) {
	defer func() {
		if r := recover(); r != nil {
			res = skip()
		}
	}()
	return rule.Check(e, batch)
}

// paramBreakdown walks the event's parameters in sorted key order and marks
// each one with the status of the first issue referencing it.
func paramBreakdown(e *domain.NormalizedEvent, fieldIssues map[string]*domain.Issue) []domain.ParamResult {
	keys := make([]string, 0, len(e.Params))
	for k := range e.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	params := make([]domain.ParamResult, 0, len(keys))
	for _, k := range keys {
		p := domain.ParamResult{Name: k, Value: e.Params[k], Status: domain.StatusSuccess}
		if issue, ok := fieldIssues[k]; ok {
			if issue.Severity == domain.SeverityCritical {
				p.Status = domain.StatusError
			} else {
				p.Status = domain.StatusWarning
			}
			p.Message = issue.Message
		}
		params = append(params, p)
	}
	return params
}

func issuePreview(issues []domain.Issue) []string {
	preview := make([]string, 0, previewLimit)
	for _, issue := range issues {
		if len(preview) == previewLimit {
			break
		}
		preview = append(preview, issue.RuleID+": "+truncate(issue.Message, 40)+"...")
	}
	return preview
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func countSuccess(params []domain.ParamResult) int {
	n := 0
	for _, p := range params {
		if p.Status == domain.StatusSuccess {
			n++
		}
	}
	return n
}
