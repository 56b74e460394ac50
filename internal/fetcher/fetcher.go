// Package fetcher defines the page-fetching capability used by source
// adapters. Implementations live in the colly and headless subpackages.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrHeadlessUnavailable is returned for RenderJS requests when no headless
// browser is configured.
var ErrHeadlessUnavailable = errors.New("headless fetcher not configured")

// Request describes a single page fetch.
type Request struct {
	URL     string
	Timeout time.Duration
	// Lax sends browser-like headers and accepts error statuses and any
	// content type, returning whatever body the server produced.
	Lax bool
	// InsecureTLS skips certificate verification for this request only.
	InsecureTLS bool
	// RenderJS asks for a headless browser render.
	RenderJS bool
}

// Page is a fetched and parsed document.
type Page struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Doc        *goquery.Document
	Duration   time.Duration
}

// Fetcher fetches a URL and returns the parsed page.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) (Page, error)
}

// Func adapts a function to Fetcher.
type Func func(ctx context.Context, req Request) (Page, error)

// Fetch calls f.
func (f Func) Fetch(ctx context.Context, req Request) (Page, error) { return f(ctx, req) }

// ParseDocument parses an already UTF-8 body into a goquery document.
func ParseDocument(body []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

// Router sends RenderJS requests to a headless fetcher and everything else to
// the static one. With shell promotion enabled, a static page that is only a
// client-side app shell is fetched again through the headless fetcher.
type Router struct {
	static   Fetcher
	headless Fetcher
	isShell  func(Page) bool
}

// RouterOption customizes a Router.
type RouterOption func(*Router)

// WithShellPromotion re-renders static pages that AppShell flags. It has no
// effect without a headless fetcher.
func WithShellPromotion(detector *AppShell) RouterOption {
	return func(r *Router) { r.isShell = detector.Matches }
}

// NewRouter builds a Router. headless may be nil.
func NewRouter(static, headless Fetcher, opts ...RouterOption) *Router {
	r := &Router{static: static, headless: headless}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Fetch dispatches req.
func (r *Router) Fetch(ctx context.Context, req Request) (Page, error) {
	if req.RenderJS {
		if r.headless == nil {
			return Page{}, ErrHeadlessUnavailable
		}
		return r.headless.Fetch(ctx, req)
	}
	page, err := r.static.Fetch(ctx, req)
	if err != nil || r.headless == nil || r.isShell == nil || !r.isShell(page) {
		return page, err
	}
	req.RenderJS = true
	rendered, rerr := r.headless.Fetch(ctx, req)
	if rerr != nil {
		// The static body is still the best answer we have.
		return page, nil
	}
	return rendered, nil
}
