package rules

import (
	"strings"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// Interpolate fills a rule's message template with event data. Supported
// placeholders: {event_name}, {url}, {detail}, {pixel_id}.
func Interpolate(template string, e *domain.NormalizedEvent, res CheckResult) string {
	eventName := e.EventName
	if eventName == "" {
		eventName = "Unknown"
	}
	url := eventURL(e)
	if url == "" {
		url = "Unknown"
	}
	pixelID := "Unknown"
	if id, ok := paramString(e, "id"); ok && id != "" {
		pixelID = id
	}

	r := strings.NewReplacer(
		"{event_name}", eventName,
		"{url}", url,
		"{detail}", res.Detail,
		"{pixel_id}", pixelID,
	)
	return r.Replace(template)
}

// eventURL prefers the page URL reported in the payload over the beacon URL.
func eventURL(e *domain.NormalizedEvent) string {
	if dl, ok := paramString(e, "dl"); ok && dl != "" {
		return dl
	}
	return e.URL
}
