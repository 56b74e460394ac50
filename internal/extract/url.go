package extract

import (
	"net/url"
	"strings"
)

// AbsoluteURL resolves ref against base. Protocol-relative references get an
// https scheme; absolute http(s) references are returned untouched.
func AbsoluteURL(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return base
	}
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ref
	}
	if strings.HasPrefix(ref, "//") {
		return "https:" + ref
	}
	baseURL, err := url.Parse(base)
	if err == nil {
		if refURL, refErr := url.Parse(ref); refErr == nil {
			return baseURL.ResolveReference(refURL).String()
		}
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(ref, "/")
}

// IsNavigableHref reports whether href points at a document rather than a
// script handler, mail link or in-page anchor.
func IsNavigableHref(href string) bool {
	h := strings.ToLower(strings.TrimSpace(href))
	switch {
	case h == "", h == "#":
		return false
	case strings.HasPrefix(h, "javascript:"), strings.HasPrefix(h, "mailto:"), strings.HasPrefix(h, "tel:"):
		return false
	}
	return true
}
