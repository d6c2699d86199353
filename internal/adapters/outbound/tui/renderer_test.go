package tui_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tagaudit/tagaudit/internal/adapters/outbound/tui"
	"github.com/tagaudit/tagaudit/internal/domain"
)

func sampleReport() *domain.AuditReport {
	critical := domain.SeverityCritical.Meta()
	return &domain.AuditReport{
		AuditID:        "a1",
		GeneratedAt:    "2026-08-30T10:00:00Z",
		Overall:        62,
		OverallLabel:   "Medium",
		RequestsSeen:   9,
		RequestsMapped: 4,
		Solutions: map[string]*domain.SolutionReport{
			"meta": {
				VendorKey:     "meta",
				SolutionName:  "Meta Pixel",
				PixelID:       "123456789012345",
				Score:         50,
				ScoreLabel:    "Medium",
				EventsAudited: 2,
				Events: []domain.EventSummary{
					{
						EventID: 1, EventName: "PageView", Status: domain.StatusSuccess,
						URL:     "https://shop.example/",
						Scoring: domain.ScoreCounts{SuccessCount: 5},
					},
					{
						EventID: 2, EventName: "Purchase", Status: domain.StatusError,
						URL:          "https://shop.example/checkout",
						Scoring:      domain.ScoreCounts{SuccessCount: 2, ErrorCount: 1},
						IssuePreview: []string{"META-008: Purchase event is missing require..."},
					},
				},
				Diagnosis: domain.Diagnosis{
					Summary: domain.DiagnosisSummary{AllCount: 8, SuccessCount: 7, ErrorCount: 1, TotalDeductions: 25},
					BySeverity: domain.BySeverity{
						Critical: []*domain.IssueGroup{{
							RuleID:         "META-008",
							Severity:       domain.SeverityCritical,
							SeverityMeta:   critical,
							Label:          "META-008: Purchase event is missing required fields.",
							Recommendation: "Send value and currency with every Purchase event.",
							Count:          1,
							AffectedEvents: []domain.EventRef{{EventID: 2, EventName: "Purchase"}},
						}},
					},
				},
			},
			"ga4": {
				VendorKey:     "ga4",
				SolutionName:  "Google Analytics 4",
				PixelID:       "G-ABC123",
				Score:         75,
				ScoreLabel:    "Good",
				EventsAudited: 1,
				Events: []domain.EventSummary{
					{
						EventID: 1, EventName: "page_view", Status: domain.StatusWarning,
						Scoring: domain.ScoreCounts{SuccessCount: 3, WarningCount: 1},
					},
				},
			},
		},
	}
}

func TestRenderAudit_ContainsOverall(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "62")
	assert.Contains(t, output, "100")
	assert.Contains(t, output, "Medium")
}

func TestRenderAudit_ContainsSolutionNames(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "Meta Pixel")
	assert.Contains(t, output, "Google Analytics 4")
}

func TestRenderAudit_ContainsPixelIDs(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "123456789012345")
	assert.Contains(t, output, "G-ABC123")
}

func TestRenderAudit_ContainsEvents(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "PageView")
	assert.Contains(t, output, "Purchase")
	assert.Contains(t, output, "page_view")
}

func TestRenderAudit_ShowsIssuePreviews(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "META-008: Purchase event is missing require...")
}

func TestRenderAudit_ShowsDiagnosisGroups(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "Critical (1)")
	assert.Contains(t, output, "META-008: Purchase event is missing required fields.")
	assert.Contains(t, output, "Send value and currency with every Purchase event.")
	assert.Contains(t, output, "#2 Purchase")
}

func TestRenderAudit_SolutionsSortedByVendorKey(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	ga4Idx := strings.Index(output, "Google Analytics 4")
	metaIdx := strings.Index(output, "Meta Pixel")
	assert.True(t, ga4Idx < metaIdx, "ga4 should render before meta")
}

func TestRenderAudit_ProgressBars(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "█")
	assert.Contains(t, output, "●")
}

func TestRenderAudit_RequestCounts(t *testing.T) {
	output := tui.RenderAudit(sampleReport())
	assert.Contains(t, output, "4 of 9 captured requests")
}

func TestRenderAudit_NoSolutions(t *testing.T) {
	report := &domain.AuditReport{Overall: 0, OverallLabel: "Critical"}
	output := tui.RenderAudit(report)
	assert.Contains(t, output, "No tracking vendors detected")
}

func TestRenderAudit_CleanSolutionShowsNoIssues(t *testing.T) {
	report := &domain.AuditReport{
		Overall: 100, OverallLabel: "High",
		RequestsSeen: 1, RequestsMapped: 1,
		Solutions: map[string]*domain.SolutionReport{
			"ga4": {VendorKey: "ga4", SolutionName: "Google Analytics 4", Score: 100, ScoreLabel: "High", EventsAudited: 1},
		},
	}
	output := tui.RenderAudit(report)
	assert.Contains(t, output, "No issues found.")
}

func TestRenderHistory_Empty(t *testing.T) {
	output := tui.RenderHistory(nil)
	assert.Contains(t, output, "No audit history found.")
}

func TestRenderHistory_ShowsTrend(t *testing.T) {
	entries := []domain.AuditEntry{
		{Timestamp: "2026-08-29T10:00:00Z", CaptureFile: "a.json", Overall: 60, Label: "Medium"},
		{Timestamp: "2026-08-30T10:00:00Z", CaptureFile: "a.json", Overall: 85, Label: "Good"},
	}
	output := tui.RenderHistory(entries)
	assert.Contains(t, output, "2026-08-29")
	assert.Contains(t, output, "60/100")
	assert.Contains(t, output, "85/100")
	assert.Contains(t, output, "↑25")
}
