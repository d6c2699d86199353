// Package detect maps captured tracking requests to the vendor that sent them.
//
// Several ad platforms share serving infrastructure (the doubleclick.net
// family in particular), so the registry is an ordered table: more specific
// vendors are listed before the ones they would otherwise shadow, and a
// vendor with a path pattern is rejected outright when the path does not
// match instead of falling back to its domain match.
package detect

import "regexp"

// Vendor describes one configured tracking solution. Instances are static
// and never mutated after process start.
type Vendor struct {
	Key       string
	Name      string
	ShortName string
	// Domains are matched as case-insensitive substrings of the request host.
	Domains []string
	// PathPattern, when set, must match the URL path for the vendor to claim
	// the request. QueryPattern is an alternative accepted in its place.
	PathPattern  *regexp.Regexp
	QueryPattern *regexp.Regexp
	// EventNames enumerates the vendor's known semantic event names.
	EventNames []string
}

var registry = []Vendor{
	{
		Key:         "meta",
		Name:        "Facebook Pixel",
		ShortName:   "Meta",
		Domains:     []string{"facebook.com", "facebook.net", "fbcdn.net"},
		PathPattern: regexp.MustCompile(`/tr`),
		EventNames: []string{
			"PageView", "ViewContent", "AddToCart", "InitiateCheckout",
			"Purchase", "Lead", "CompleteRegistration", "Search",
		},
	},
	{
		Key:          "ga4",
		Name:         "Google Analytics 4",
		ShortName:    "GA4",
		Domains:      []string{"google-analytics.com", "analytics.google.com"},
		PathPattern:  regexp.MustCompile(`/g/collect`),
		QueryPattern: regexp.MustCompile(`tid=g-`),
		EventNames: []string{
			"page_view", "view_item", "add_to_cart", "begin_checkout",
			"purchase", "sign_up", "login", "search",
		},
	},
	{
		Key:         "gtm",
		Name:        "Google Tag Manager",
		ShortName:   "GTM",
		Domains:     []string{"googletagmanager.com"},
		PathPattern: regexp.MustCompile(`/gtm\.js|/gtag/js`),
		EventNames:  []string{"container_load"},
	},
	{
		Key:       "gads",
		Name:      "Google Ads",
		ShortName: "GAds",
		Domains: []string{
			"doubleclick.net", "googleads.g.doubleclick.net",
			"googlesyndication.com", "googleadservices.com",
		},
		EventNames: []string{"conversion", "remarketing", "page_view"},
	},
	{
		Key:        "tiktok",
		Name:       "TikTok Pixel",
		ShortName:  "TikTok",
		Domains:    []string{"tiktok.com", "analytics.tiktok.com"},
		EventNames: []string{"PageView", "ViewContent", "AddToCart", "CompletePayment"},
	},
	{
		Key:        "linkedin",
		Name:       "LinkedIn Insight",
		ShortName:  "LinkedIn",
		Domains:    []string{"linkedin.com", "snap.licdn.com"},
		EventNames: []string{"page_view", "conversion"},
	},
	{
		Key:        "hotjar",
		Name:       "Hotjar",
		ShortName:  "Hotjar",
		Domains:    []string{"hotjar.com", "hotjar.io"},
		EventNames: []string{"session_recording", "heatmap"},
	},
	{
		Key:        "criteo",
		Name:       "Criteo",
		ShortName:  "Criteo",
		Domains:    []string{"criteo.com", "criteo.net"},
		EventNames: []string{"viewHome", "viewItem", "viewBasket", "trackTransaction"},
	},
}

// Registry returns the configured vendors in detection order.
// Callers must not mutate the returned slice.
func Registry() []Vendor { return registry }

// VendorByKey looks up a vendor by its identity key.
func VendorByKey(key string) (Vendor, bool) {
	for _, v := range registry {
		if v.Key == key {
			return v, true
		}
	}
	return Vendor{}, false
}

// Keys returns all vendor keys in detection order.
func Keys() []string {
	keys := make([]string, len(registry))
	for i, v := range registry {
		keys[i] = v.Key
	}
	return keys
}
