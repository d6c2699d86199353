// Package report aggregates per-event validation results into the
// per-vendor solution report: score, severity-grouped diagnosis and the
// detail map consumed by renderers.
package report

import (
	"strconv"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// BuildSolution reduces one vendor's event results into its solution report.
// A vendor detected with zero scoreable events reports a score of 100: no
// evidence of problems is treated as no penalty.
func BuildSolution(vendorKey, solutionName, pixelID string, results []*domain.EventResult) *domain.SolutionReport {
	sol := &domain.SolutionReport{
		VendorKey:    vendorKey,
		SolutionName: solutionName,
		PixelID:      pixelID,
		Events:       []domain.EventSummary{},
		EventDetails: map[int]*domain.EventResult{},
	}

	totalDeductions := 0
	summary := domain.DiagnosisSummary{}

	for _, r := range results {
		switch r.Status {
		case domain.StatusSuccess:
			sol.SuccessCount++
		case domain.StatusWarning:
			sol.WarningCount++
		case domain.StatusError:
			sol.ErrorCount++
		}
		totalDeductions += r.Deduction

		summary.SuccessCount += r.Scoring.SuccessCount
		summary.WarningCount += r.Scoring.WarningCount
		summary.ErrorCount += r.Scoring.ErrorCount

		sol.Events = append(sol.Events, domain.EventSummary{
			EventID:      r.EventID,
			EventName:    r.EventName,
			Status:       r.Status,
			Timestamp:    r.Timestamp,
			URL:          r.URL,
			Scoring:      r.Scoring,
			IssuePreview: r.IssuePreview,
		})
		if len(r.Issues) > 0 {
			sol.EventDetails[r.EventID] = r
		}
	}

	summary.AllCount = summary.SuccessCount + summary.WarningCount + summary.ErrorCount
	summary.TotalDeductions = totalDeductions

	sol.EventsAudited = len(results)
	sol.Score = domain.ScoreFromDeductions(totalDeductions)
	sol.ScoreLabel = domain.ScoreLabel(sol.Score)
	sol.Diagnosis = domain.Diagnosis{
		Summary:    summary,
		BySeverity: GroupIssues(results),
	}
	return sol
}

// GroupIssues deduplicates issue instances across events into severity
// buckets. Groups are keyed by rule ID when present, otherwise type+field;
// an event joins a group at most once.
func GroupIssues(results []*domain.EventResult) domain.BySeverity {
	buckets := map[domain.Severity]*severityBucket{
		domain.SeverityCritical:     newSeverityBucket(),
		domain.SeverityImportant:    newSeverityBucket(),
		domain.SeverityOptimization: newSeverityBucket(),
	}

	for _, r := range results {
		for i := range r.Issues {
			issue := &r.Issues[i]
			bucket, ok := buckets[issue.Severity]
			if !ok {
				continue
			}
			bucket.add(issue, r)
		}
	}

	grouped := domain.BySeverity{
		Critical:     buckets[domain.SeverityCritical].groups,
		Important:    buckets[domain.SeverityImportant].groups,
		Optimization: buckets[domain.SeverityOptimization].groups,
	}
	for _, groups := range [][]*domain.IssueGroup{grouped.Critical, grouped.Important, grouped.Optimization} {
		for _, g := range groups {
			g.Label = groupLabel(g)
		}
	}
	return grouped
}

// severityBucket keeps map lookup for group keys alongside insertion order.
type severityBucket struct {
	byKey  map[string]*domain.IssueGroup
	seen   map[string]map[int]bool
	groups []*domain.IssueGroup
}

func newSeverityBucket() *severityBucket {
	return &severityBucket{
		byKey:  map[string]*domain.IssueGroup{},
		seen:   map[string]map[int]bool{},
		groups: []*domain.IssueGroup{},
	}
}

func (b *severityBucket) add(issue *domain.Issue, r *domain.EventResult) {
	key := issue.RuleID
	if key == "" {
		key = issue.Type + "|" + issue.Field
	}

	group, ok := b.byKey[key]
	if !ok {
		group = &domain.IssueGroup{
			RuleID:         issue.RuleID,
			Type:           issue.Type,
			Field:          issue.Field,
			Severity:       issue.Severity,
			SeverityMeta:   issue.Severity.Meta(),
			Message:        issue.Message,
			Description:    issue.Description,
			Recommendation: issue.Recommendation,
			DocURL:         issue.DocURL,
			Deduction:      issue.Deduction,
			AffectedEvents: []domain.EventRef{},
		}
		b.byKey[key] = group
		b.seen[key] = map[int]bool{}
		b.groups = append(b.groups, group)
	}

	if b.seen[key][r.EventID] {
		return
	}
	b.seen[key][r.EventID] = true
	group.Count++
	group.AffectedEvents = append(group.AffectedEvents, domain.EventRef{
		EventID:   r.EventID,
		EventName: r.EventName,
		URL:       r.URL,
		Timestamp: r.Timestamp,
	})
}

// groupLabel renders the human-readable group heading.
func groupLabel(g *domain.IssueGroup) string {
	if g.RuleID != "" {
		if g.Message != "" {
			return g.RuleID + ": " + g.Message
		}
		return g.RuleID + ": " + g.Type
	}

	count := strconv.Itoa(g.Count)
	eventWord := "events"
	if g.Count == 1 {
		eventWord = "event"
	}

	switch g.Type {
	case domain.IssueMissingParameter:
		field := g.Field
		if field == "" {
			field = "required parameter"
		}
		return count + " " + eventWord + " missing " + field
	case domain.IssueMalformedValue:
		field := g.Field
		if field == "" {
			field = "value"
		}
		return count + " " + eventWord + " with malformed " + field
	case domain.IssueDuplicate:
		return count + " duplicate events detected"
	case domain.IssueRuleViolation:
		if g.Message != "" {
			return g.Message
		}
		return count + " " + eventWord + " with rule violations"
	default:
		return count + " " + eventWord + " with " + g.Type + " issues"
	}
}
