package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagaudit/tagaudit/internal/domain"
)

func issueFor(ruleID string, severity domain.Severity, deduction int) domain.Issue {
	return domain.Issue{
		RuleID:    ruleID,
		Type:      domain.IssueRuleViolation,
		Severity:  severity,
		Field:     "id",
		Message:   "Pixel ID missing or invalid.",
		Deduction: deduction,
	}
}

func eventResult(id int, status domain.Status, deduction int, issues ...domain.Issue) *domain.EventResult {
	return &domain.EventResult{
		EventID:   id,
		EventName: "PageView",
		Status:    status,
		URL:       "https://shop.example/",
		Deduction: deduction,
		Issues:    issues,
	}
}

func TestBuildSolutionScoresFromDeductions(t *testing.T) {
	results := []*domain.EventResult{
		eventResult(1, domain.StatusError, 30, issueFor("META-001", domain.SeverityCritical, 30)),
		eventResult(2, domain.StatusSuccess, 0),
	}

	sol := BuildSolution("meta", "Meta Pixel", "123456789012345", results)

	assert.Equal(t, 70, sol.Score)
	assert.Equal(t, "Medium", sol.ScoreLabel)
	assert.Equal(t, 2, sol.EventsAudited)
	assert.Equal(t, 1, sol.SuccessCount)
	assert.Equal(t, 1, sol.ErrorCount)
	assert.Equal(t, 30, sol.Diagnosis.Summary.TotalDeductions)
}

func TestBuildSolutionScoreFloor(t *testing.T) {
	var results []*domain.EventResult
	for i := 1; i <= 6; i++ {
		results = append(results, eventResult(i, domain.StatusError, 30, issueFor("META-001", domain.SeverityCritical, 30)))
	}

	sol := BuildSolution("meta", "Meta Pixel", "N/A", results)

	// 180 points of deductions still floors at zero.
	assert.Equal(t, 0, sol.Score)
	assert.Equal(t, "Critical", sol.ScoreLabel)
}

func TestBuildSolutionNoEventsScoresPerfect(t *testing.T) {
	sol := BuildSolution("meta", "Meta Pixel", "N/A", nil)

	assert.Equal(t, 100, sol.Score)
	assert.Equal(t, "High", sol.ScoreLabel)
	assert.Zero(t, sol.EventsAudited)
	assert.Empty(t, sol.EventDetails)
}

func TestBuildSolutionDetailsOnlyForEventsWithIssues(t *testing.T) {
	results := []*domain.EventResult{
		eventResult(1, domain.StatusError, 30, issueFor("META-001", domain.SeverityCritical, 30)),
		eventResult(2, domain.StatusSuccess, 0),
		eventResult(3, domain.StatusSuccess, 0),
	}

	sol := BuildSolution("meta", "Meta Pixel", "N/A", results)

	assert.Len(t, sol.Events, 3, "flat list always carries every event")
	require.Len(t, sol.EventDetails, 1)
	assert.Contains(t, sol.EventDetails, 1)
}

func TestGroupIssuesByRule(t *testing.T) {
	issue := issueFor("META-003", domain.SeverityCritical, 25)
	results := []*domain.EventResult{
		eventResult(1, domain.StatusError, 25, issue),
		eventResult(2, domain.StatusError, 25, issue),
	}

	grouped := GroupIssues(results)

	require.Len(t, grouped.Critical, 1)
	g := grouped.Critical[0]
	assert.Equal(t, "META-003", g.RuleID)
	assert.Equal(t, 2, g.Count)
	assert.Len(t, g.AffectedEvents, 2)
	assert.Equal(t, 1, g.AffectedEvents[0].EventID)
	assert.Equal(t, 2, g.AffectedEvents[1].EventID)
	assert.Equal(t, "META-003: Pixel ID missing or invalid.", g.Label)
	assert.Empty(t, grouped.Important)
	assert.Empty(t, grouped.Optimization)
}

func TestGroupIssuesDeduplicatesByEvent(t *testing.T) {
	issue := issueFor("META-001", domain.SeverityCritical, 30)
	// The same event carrying the same rule twice must count once.
	results := []*domain.EventResult{
		eventResult(1, domain.StatusError, 60, issue, issue),
	}

	grouped := GroupIssues(results)

	require.Len(t, grouped.Critical, 1)
	assert.Equal(t, 1, grouped.Critical[0].Count)
	assert.Len(t, grouped.Critical[0].AffectedEvents, 1)
}

func TestGroupIssuesKeyedByTypeAndFieldWithoutRule(t *testing.T) {
	missing := domain.Issue{
		Type:     domain.IssueMissingParameter,
		Severity: domain.SeverityImportant,
		Field:    "currency",
		Message:  "Missing required parameter: currency",
	}
	results := []*domain.EventResult{
		eventResult(1, domain.StatusWarning, 0, missing),
		eventResult(2, domain.StatusWarning, 0, missing),
	}

	grouped := GroupIssues(results)

	require.Len(t, grouped.Important, 1)
	assert.Equal(t, "2 events missing currency", grouped.Important[0].Label)
}

func TestGroupIssuesSeverityBuckets(t *testing.T) {
	results := []*domain.EventResult{
		eventResult(1, domain.StatusError, 45,
			issueFor("META-001", domain.SeverityCritical, 30),
			issueFor("META-005", domain.SeverityImportant, 15),
		),
		eventResult(2, domain.StatusWarning, 5,
			issueFor("META-006", domain.SeverityOptimization, 5),
		),
	}

	grouped := GroupIssues(results)

	assert.Len(t, grouped.Critical, 1)
	assert.Len(t, grouped.Important, 1)
	assert.Len(t, grouped.Optimization, 1)
	assert.Equal(t, 1, grouped.Critical[0].SeverityMeta.Priority)
	assert.Equal(t, 3, grouped.Optimization[0].SeverityMeta.Priority)
}
