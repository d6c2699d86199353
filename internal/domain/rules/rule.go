// Package rules holds the per-vendor validation catalogs and the generic
// interpreter that evaluates them against normalized events.
//
// A rule is a declarative descriptor: identity, applicability, severity,
// deduction and messaging live in the record; the check itself is a small
// pure function of the event (and, for cross-event rules, its batch).
package rules

import (
	"strings"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// CheckResult is the outcome of running one rule's check against one event.
// Skipped means the rule's precondition was not met and the result
// contributes nothing to scoring or issues.
type CheckResult struct {
	Passed  bool
	Skipped bool
	Detail  string
}

func pass() CheckResult                { return CheckResult{Passed: true} }
func skip() CheckResult                { return CheckResult{Passed: true, Skipped: true} }
func fail(detail string) CheckResult   { return CheckResult{Detail: detail} }
func passed(detail string) CheckResult { return CheckResult{Passed: true, Detail: detail} }

// CheckFunc evaluates one event. Single-event rules ignore the batch.
type CheckFunc func(e *domain.NormalizedEvent, batch []*domain.NormalizedEvent) CheckResult

// Rule is one independently evaluable validation check.
type Rule struct {
	ID             string
	Name           string
	Description    string
	Fields         []string
	AppliesTo      []string
	Severity       domain.Severity
	Deduction      int
	Check          CheckFunc
	Message        string
	Template       string
	Recommendation string
	DocURL         string
}

// Applies reports whether the rule runs for the given event name. An empty
// AppliesTo set means the rule runs for every event of its vendor.
func (r *Rule) Applies(eventName string) bool {
	if len(r.AppliesTo) == 0 {
		return true
	}
	for _, name := range r.AppliesTo {
		if name == eventName {
			return true
		}
	}
	return false
}

// FieldLabel joins the rule's target fields for issue records.
func (r *Rule) FieldLabel() string {
	return strings.Join(r.Fields, ", ")
}
