package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tagaudit/tagaudit/internal/domain/detect"
)

func TestDetect_KnownVendors(t *testing.T) {
	d := detect.NewDetector(detect.Registry())

	tests := []struct {
		name    string
		domain  string
		url     string
		query   string
		want    string
		matched bool
	}{
		{
			name:   "meta pixel hit",
			domain: "www.facebook.com",
			url:    "https://www.facebook.com/tr?id=123456789012345&ev=PageView",
			want:   "meta", matched: true,
		},
		{
			name:   "ga4 collect",
			domain: "www.google-analytics.com",
			url:    "https://www.google-analytics.com/g/collect?v=2&tid=G-ABC123",
			want:   "ga4", matched: true,
		},
		{
			name:   "ga4 by query signature",
			domain: "analytics.google.com",
			url:    "https://analytics.google.com/collect",
			query:  "tid=G-XYZ999&en=purchase",
			want:   "ga4", matched: true,
		},
		{
			name:   "gtm container load",
			domain: "www.googletagmanager.com",
			url:    "https://www.googletagmanager.com/gtm.js?id=GTM-ABCD",
			want:   "gtm", matched: true,
		},
		{
			name:   "google ads conversion",
			domain: "googleads.g.doubleclick.net",
			url:    "https://googleads.g.doubleclick.net/pagead/conversion/123456789/",
			want:   "gads", matched: true,
		},
		{
			name:   "tiktok analytics",
			domain: "analytics.tiktok.com",
			url:    "https://analytics.tiktok.com/api/v2/pixel",
			want:   "tiktok", matched: true,
		},
		{
			name:   "linkedin insight",
			domain: "snap.licdn.com",
			url:    "https://snap.licdn.com/li.lms-analytics/insight.min.js",
			want:   "linkedin", matched: true,
		},
		{
			name:   "hotjar",
			domain: "script.hotjar.com",
			url:    "https://script.hotjar.com/modules.hash.js",
			want:   "hotjar", matched: true,
		},
		{
			name:   "criteo",
			domain: "sslwidget.criteo.com",
			url:    "https://sslwidget.criteo.com/event?a=12345",
			want:   "criteo", matched: true,
		},
		{
			name:   "unrelated cdn",
			domain: "cdn.shopify.com",
			url:    "https://cdn.shopify.com/assets/app.js",
			want:   "", matched: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, ok := d.Detect(tt.domain, tt.url, tt.query)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestDetect_PathSignatureRequired(t *testing.T) {
	d := detect.NewDetector(detect.Registry())

	// facebook.com without /tr is not a pixel hit
	key, ok := d.Detect("www.facebook.com", "https://www.facebook.com/plugins/like.php", "")
	assert.False(t, ok)
	assert.Empty(t, key)

	// google-analytics.com serving analytics.js is not a GA4 hit
	key, ok = d.Detect("www.google-analytics.com", "https://www.google-analytics.com/analytics.js", "")
	assert.False(t, ok)
	assert.Empty(t, key)
}

func TestDetect_MalformedURLFallsBackToWholeString(t *testing.T) {
	d := detect.NewDetector(detect.Registry())

	key, ok := d.Detect("www.facebook.com", "://bad url/tr?id=1", "")
	assert.True(t, ok)
	assert.Equal(t, "meta", key)
}

func TestPixelID(t *testing.T) {
	assert.Equal(t, "G-ABC123", detect.PixelID("ga4", map[string]any{"tid": "G-ABC123"}))
	assert.Equal(t, "123456789012345", detect.PixelID("meta", map[string]any{"id": "123456789012345"}))
	assert.Equal(t, "987654", detect.PixelID("gads", map[string]any{"google_conversion_id": "987654"}))
	assert.Equal(t, "N/A", detect.PixelID("meta", map[string]any{}))
	assert.Equal(t, "N/A", detect.PixelID("tiktok", map[string]any{"sdkid": ""}))
}

func TestEventName(t *testing.T) {
	assert.Equal(t, "purchase", detect.EventName("ga4", map[string]any{"en": "purchase"}))
	assert.Equal(t, "page_view", detect.EventName("ga4", map[string]any{}))
	assert.Equal(t, "Purchase", detect.EventName("meta", map[string]any{"ev": "Purchase"}))
	assert.Equal(t, "PageView", detect.EventName("meta", map[string]any{}))
	assert.Equal(t, "conversion", detect.EventName("gads", map[string]any{"label": "abc"}))
	assert.Equal(t, "remarketing", detect.EventName("gads", map[string]any{}))
	assert.Equal(t, "CompletePayment", detect.EventName("tiktok", map[string]any{"event": "CompletePayment"}))
	assert.Equal(t, "container_load", detect.EventName("gtm", map[string]any{"anything": "x"}))
}

func TestKeys_DetectionOrder(t *testing.T) {
	keys := detect.Keys()
	assert.Equal(t, []string{"meta", "ga4", "gtm", "gads", "tiktok", "linkedin", "hotjar", "criteo"}, keys)
}

func TestVendorByKey(t *testing.T) {
	v, ok := detect.VendorByKey("ga4")
	assert.True(t, ok)
	assert.Equal(t, "Google Analytics 4", v.Name)

	_, ok = detect.VendorByKey("adobe")
	assert.False(t, ok)
}
