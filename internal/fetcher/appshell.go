package fetcher

import (
	"bytes"
	"net/http"
)

const (
	defaultShellBodyBytes = 2048
	// A page with at least this many links already has something to extract.
	shellMaxLinks = 5
	// Percentage of the body that must be script for a short page to count as a shell.
	shellScriptShare = 25
)

var appShellMarkers = [][]byte{
	[]byte(`id="__next"`),
	[]byte(`id="root"`),
	[]byte(`id="app"`),
	[]byte("data-reactroot"),
	[]byte("ng-version"),
	[]byte("<app-root"),
}

// AppShell recognises static responses that carry no content until
// client-side scripts run, such as the SSC and UPSC single-page portals.
type AppShell struct {
	// MinBodyBytes is the size under which a script-heavy body counts as a shell.
	MinBodyBytes int
}

// NewAppShell returns a detector. A zero threshold selects 2 KiB.
func NewAppShell(minBodyBytes int) *AppShell {
	if minBodyBytes <= 0 {
		minBodyBytes = defaultShellBodyBytes
	}
	return &AppShell{MinBodyBytes: minBodyBytes}
}

// Matches reports whether page should be rendered in a browser instead.
func (d *AppShell) Matches(page Page) bool {
	if page.StatusCode != http.StatusOK {
		return false
	}
	if len(bytes.TrimSpace(page.Body)) == 0 {
		return true
	}
	if page.Doc != nil && page.Doc.Find("a[href]").Length() >= shellMaxLinks {
		return false
	}
	if len(page.Body) < d.MinBodyBytes && scriptShare(page.Body) >= shellScriptShare {
		return true
	}
	for _, marker := range appShellMarkers {
		if bytes.Contains(page.Body, marker) {
			return true
		}
	}
	return false
}

// scriptShare returns the percentage of body covered by <script> elements,
// tags included. An unterminated element runs to the end of the body.
func scriptShare(body []byte) int {
	lower := bytes.ToLower(body)
	open, end := []byte("<script"), []byte("</script>")
	covered := 0
	for rest := lower; ; {
		start := bytes.Index(rest, open)
		if start < 0 {
			break
		}
		stop := bytes.Index(rest[start:], end)
		if stop < 0 {
			covered += len(rest) - start
			break
		}
		stop += start + len(end)
		covered += stop - start
		rest = rest[stop:]
	}
	return covered * 100 / len(lower)
}
