package domain

import "math"

// Severity classifies how badly a rule violation hurts tracking quality.
type Severity string

const (
	SeverityCritical     Severity = "critical"
	SeverityImportant    Severity = "important"
	SeverityOptimization Severity = "optimization"
)

// SeverityMeta carries the static description attached to each severity tier.
type SeverityMeta struct {
	Level       Severity `json:"level"`
	Priority    int      `json:"priority"`
	Label       string   `json:"label"`
	Description string   `json:"description"`
}

var severityMetas = map[Severity]SeverityMeta{
	SeverityCritical: {
		Level:       SeverityCritical,
		Priority:    1,
		Label:       "Critical",
		Description: "Must be fixed immediately - blocking tracking functionality",
	},
	SeverityImportant: {
		Level:       SeverityImportant,
		Priority:    2,
		Label:       "Important",
		Description: "Should be addressed soon - impacting data quality",
	},
	SeverityOptimization: {
		Level:       SeverityOptimization,
		Priority:    3,
		Label:       "Optimization",
		Description: "Nice to have - improve tracking accuracy",
	},
}

// Meta returns the static metadata for a severity tier.
func (s Severity) Meta() SeverityMeta { return severityMetas[s] }

// Status is the per-event (and per-parameter) traffic-light state.
type Status string

const (
	StatusSuccess Status = "success"
	StatusWarning Status = "warning"
	StatusError   Status = "error"
)

// Issue type constants. RuleID-less issues are keyed by type+field when grouped.
const (
	IssueRuleViolation    = "rule_violation"
	IssueMissingParameter = "missing_parameter"
	IssueMalformedValue   = "malformed_value"
	IssueDuplicate        = "duplicate"
	IssueCrossRequest     = "cross_request_issue"
)

// Issue is one failed rule applied to one event.
type Issue struct {
	RuleID         string   `json:"rule_id,omitempty"`
	Type           string   `json:"type"`
	Severity       Severity `json:"severity"`
	Field          string   `json:"field,omitempty"`
	Message        string   `json:"message"`
	Description    string   `json:"description,omitempty"`
	Recommendation string   `json:"recommendation,omitempty"`
	DocURL         string   `json:"doc_url,omitempty"`
	Deduction      int      `json:"score_deduction"`
}

// ParamResult is the per-parameter entry in an event's breakdown.
type ParamResult struct {
	Name    string `json:"name"`
	Value   any    `json:"value"`
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// ScoreCounts summarizes one event's parameter/issue tallies.
type ScoreCounts struct {
	SuccessCount int `json:"success_count"`
	WarningCount int `json:"warning_count"`
	ErrorCount   int `json:"error_count"`
}

// EventResult is the outcome of validating one normalized event.
type EventResult struct {
	EventID      int           `json:"event_id"`
	EventName    string        `json:"event_name"`
	Status       Status        `json:"status"`
	Timestamp    string        `json:"timestamp,omitempty"`
	URL          string        `json:"url"`
	Scoring      ScoreCounts   `json:"scoring"`
	Deduction    int           `json:"score_deduction"`
	IssuePreview []string      `json:"issue_preview"`
	Parameters   []ParamResult `json:"parameters"`
	Issues       []Issue       `json:"issues"`
}

// EventRef identifies an event inside an issue group.
type EventRef struct {
	EventID   int    `json:"event_id"`
	EventName string `json:"event_name"`
	URL       string `json:"url"`
	Timestamp string `json:"timestamp,omitempty"`
}

// IssueGroup aggregates identical issues across events. Grouping key is the
// rule ID when present, otherwise type+field.
type IssueGroup struct {
	RuleID         string       `json:"rule_id,omitempty"`
	Type           string       `json:"type"`
	Field          string       `json:"field,omitempty"`
	Severity       Severity     `json:"severity"`
	SeverityMeta   SeverityMeta `json:"severity_meta"`
	Label          string       `json:"label"`
	Message        string       `json:"message"`
	Description    string       `json:"description,omitempty"`
	Recommendation string       `json:"recommendation,omitempty"`
	DocURL         string       `json:"doc_url,omitempty"`
	Deduction      int          `json:"score_deduction"`
	Count          int          `json:"count"`
	AffectedEvents []EventRef   `json:"affected_events"`
}

// BySeverity buckets issue groups into the three severity tiers.
type BySeverity struct {
	Critical     []*IssueGroup `json:"critical"`
	Important    []*IssueGroup `json:"important"`
	Optimization []*IssueGroup `json:"optimization"`
}

// DiagnosisSummary totals parameter outcomes and deductions across a solution.
type DiagnosisSummary struct {
	AllCount        int `json:"all_count"`
	SuccessCount    int `json:"success_count"`
	WarningCount    int `json:"warning_count"`
	ErrorCount      int `json:"error_count"`
	TotalDeductions int `json:"total_deductions"`
}

// Diagnosis is the severity-grouped problem breakdown of a solution.
type Diagnosis struct {
	Summary    DiagnosisSummary `json:"summary"`
	BySeverity BySeverity       `json:"bySeverity"`
}

// EventSummary is the flat per-event line in a solution report.
type EventSummary struct {
	EventID      int         `json:"event_id"`
	EventName    string      `json:"event_name"`
	Status       Status      `json:"status"`
	Timestamp    string      `json:"timestamp,omitempty"`
	URL          string      `json:"url"`
	Scoring      ScoreCounts `json:"scoring"`
	IssuePreview []string    `json:"issue_preview"`
}

// SolutionReport is the audit result for one detected vendor.
// EventDetails holds only events carrying at least one issue.
type SolutionReport struct {
	VendorKey     string               `json:"vendor_key"`
	SolutionName  string               `json:"solution_name"`
	PixelID       string               `json:"pixel_id"`
	Score         int                  `json:"score"`
	ScoreLabel    string               `json:"score_label"`
	EventsAudited int                  `json:"events_audited"`
	SuccessCount  int                  `json:"success_count"`
	WarningCount  int                  `json:"warning_count"`
	ErrorCount    int                  `json:"error_count"`
	Events        []EventSummary       `json:"events"`
	Diagnosis     Diagnosis            `json:"problem_diagnosis"`
	EventDetails  map[int]*EventResult `json:"event_details"`
}

// AuditReport is the full cross-vendor audit of one captured batch.
type AuditReport struct {
	AuditID        string                     `json:"audit_id"`
	GeneratedAt    string                     `json:"generated_at"`
	Overall        int                        `json:"overall_score"`
	OverallLabel   string                     `json:"overall_label"`
	RequestsSeen   int                        `json:"requests_seen"`
	RequestsMapped int                        `json:"requests_mapped"`
	Solutions      map[string]*SolutionReport `json:"solutions"`
}

// AuditEntry is one line of persisted audit history.
type AuditEntry struct {
	Timestamp   string `json:"timestamp"`
	CaptureFile string `json:"capture_file"`
	Overall     int    `json:"overall_score"`
	Label       string `json:"label"`
	Solutions   int    `json:"solutions"`
}

// Entry condenses a report into its persistable history line.
func (r *AuditReport) Entry(captureFile string) AuditEntry {
	return AuditEntry{
		Timestamp:   r.GeneratedAt,
		CaptureFile: captureFile,
		Overall:     r.Overall,
		Label:       r.OverallLabel,
		Solutions:   len(r.Solutions),
	}
}

// ScoreFromDeductions applies the flat deduction model: deductions sum
// without a cap, the score never goes below zero.
func ScoreFromDeductions(total int) int {
	if total >= 100 {
		return 0
	}
	return 100 - total
}

// ScoreLabel maps a 0-100 score to its display label.
func ScoreLabel(score int) string {
	switch {
	case score >= 90:
		return "High"
	case score >= 75:
		return "Good"
	case score >= 50:
		return "Medium"
	case score >= 25:
		return "Low"
	default:
		return "Critical"
	}
}

// OverallScore averages solution scores, rounded to the nearest integer.
// A batch with no detected vendors scores 0.
func OverallScore(scores []int) int {
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return int(math.Round(float64(sum) / float64(len(scores))))
}

// StatusFor derives an event status from its issue severity counts.
// Optimization issues still demote the event to warning.
func StatusFor(critical, important, optimization int) Status {
	switch {
	case critical > 0:
		return StatusError
	case important > 0 || optimization > 0:
		return StatusWarning
	default:
		return StatusSuccess
	}
}
