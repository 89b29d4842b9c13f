package whttp

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Captive portals answer probe GETs with their own login page, which would
// make the bandwidth measurement look plausible while being garbage.
var portalTitleWords = []string{
	"login", "sign in", "sign-in", "authenticate", "wifi", "wi-fi",
	"hotspot", "portal", "access denied", "terms of use",
}

// LooksLikeCaptivePortal inspects a probe payload and reports whether it
// smells like an interception page rather than the requested resource.
func LooksLikeCaptivePortal(res *FetchResult) bool {
	if res == nil {
		return false
	}
	if res.StatusCode == 511 { // Network Authentication Required
		return true
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return false
	}

	title := strings.ToLower(doc.Find("title").First().Text())
	for _, w := range portalTitleWords {
		if strings.Contains(title, w) {
			return true
		}
	}

	// A meta refresh or a password form on a supposedly static payload is a
	// strong interception signal.
	if doc.Find(`meta[http-equiv="refresh"]`).Length() > 0 {
		return true
	}
	if doc.Find(`form input[type="password"]`).Length() > 0 {
		return true
	}

	return false
}
