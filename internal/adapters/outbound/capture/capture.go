// Package capture reads crawler output files into domain capture results.
//
// The crawler records every outbound tracking request with its raw query
// string and POST payload; this adapter only reshapes that JSON, it never
// interprets parameters.
package capture

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/tagaudit/tagaudit/internal/domain"
)

// Parse decodes crawler JSON into a capture result. Accepted shapes, in
// order: a {data: {...}} envelope, a bare {requests: [...]} object, and a
// bare request array.
func Parse(data []byte) (*domain.CaptureResult, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parsing capture: invalid JSON")
	}
	root := gjson.ParseBytes(data)
	if envelope := root.Get("data"); envelope.IsObject() {
		root = envelope
	}

	requests := root.Get("requests")
	if root.IsArray() {
		requests = root
	}
	if !requests.IsArray() {
		return nil, fmt.Errorf("parsing capture: no requests array found")
	}

	result := &domain.CaptureResult{
		PageTitle: root.Get("pageTitle").String(),
		SiteType:  root.Get("siteType").String(),
	}
	requests.ForEach(func(_, r gjson.Result) bool {
		result.Requests = append(result.Requests, parseRequest(r))
		return true
	})
	root.Get("journey").ForEach(func(_, s gjson.Result) bool {
		result.Journey = append(result.Journey, domain.JourneyStep{
			Step:      int(s.Get("step").Int()),
			Action:    s.Get("action").String(),
			Timestamp: s.Get("timestamp").String(),
			URL:       s.Get("url").String(),
			Title:     s.Get("title").String(),
		})
		return true
	})
	return result, nil
}

func parseRequest(r gjson.Result) domain.CapturedRequest {
	rawURL := r.Get("url").String()
	req := domain.CapturedRequest{
		URL:         rawURL,
		Domain:      r.Get("domain").String(),
		Method:      r.Get("method").String(),
		QueryString: r.Get("params").String(),
		PostBody:    r.Get("payload").String(),
		PageURL:     r.Get("pageUrl").String(),
		JourneyStep: int(r.Get("journeyStep").Int()),
	}
	if req.Method == "" {
		req.Method = "GET"
	}
	if req.Domain == "" {
		req.Domain = domainOf(rawURL)
	}
	if req.QueryString == "" {
		if i := strings.IndexByte(rawURL, '?'); i >= 0 {
			req.QueryString = rawURL[i+1:]
		}
	}
	req.Timestamp = parseTimestamp(r.Get("timestamp"))
	return req
}

// parseTimestamp accepts RFC3339 strings and epoch milliseconds; anything
// else yields the zero time and the duplicate checks simply see no window.
func parseTimestamp(v gjson.Result) time.Time {
	switch v.Type {
	case gjson.String:
		if t, err := time.Parse(time.RFC3339, v.String()); err == nil {
			return t
		}
	case gjson.Number:
		ms := v.Int()
		if ms > 0 {
			return time.UnixMilli(ms).UTC()
		}
	}
	return time.Time{}
}

func domainOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
