package domain

import "time"

// CapturedRequest is one outbound tracking request recorded by the crawler.
// Immutable once produced; the engine never mutates it.
type CapturedRequest struct {
	URL         string    `json:"url"`
	Domain      string    `json:"domain"`
	Method      string    `json:"method"`
	QueryString string    `json:"query_string"`
	PostBody    string    `json:"post_body,omitempty"`
	Timestamp   time.Time `json:"timestamp,omitempty"`
	PageURL     string    `json:"page_url"`
	JourneyStep int       `json:"journey_step"`
}

// JourneyStep is one simulated user action from the crawler's journey trace.
// Carried for reporting correlation only; the rule engine never reads it.
type JourneyStep struct {
	Step      int    `json:"step"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp,omitempty"`
	URL       string `json:"url,omitempty"`
	Title     string `json:"title,omitempty"`
}

// CaptureResult is the crawler output consumed by the engine: the tracking
// requests plus the journey trace they were captured during.
type CaptureResult struct {
	Requests  []CapturedRequest `json:"requests"`
	Journey   []JourneyStep     `json:"journey,omitempty"`
	PageTitle string            `json:"page_title,omitempty"`
	SiteType  string            `json:"site_type,omitempty"`
}

// NormalizedEvent is a captured request after vendor assignment and
// parameter extraction. EventID is 1-based and unique within its batch.
type NormalizedEvent struct {
	EventID   int
	EventName string
	VendorKey string
	Timestamp time.Time
	URL       string
	Method    string
	Params    map[string]any
	Source    *CapturedRequest
}

// Param returns the named parameter, also looking inside the vendor's
// nested custom-data objects (cd, ud) when the flat key is absent.
func (e *NormalizedEvent) Param(name string) (any, bool) {
	if v, ok := e.Params[name]; ok {
		return v, true
	}
	for _, nested := range []string{"cd", "ud"} {
		if m, ok := e.Params[nested].(map[string]any); ok {
			if v, ok := m[name]; ok {
				return v, true
			}
		}
	}
	return nil, false
}

// TimestampString renders the capture time for reports, empty when unknown.
func (e *NormalizedEvent) TimestampString() string {
	if e.Timestamp.IsZero() {
		return ""
	}
	return e.Timestamp.Format(time.RFC3339)
}
