package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	minTitleLen       = 12
	minAncestorLen    = 15
	ancestorTitleMax  = 120
	titleAncestorHops = 4
)

var (
	documentExt     = regexp.MustCompile(`(?i)\.(pdf|doc|docx|htm|html|php|aspx)$`)
	filenameDivider = strings.NewReplacer("_", " ", "-", " ")
)

// BuildTitle picks the best human-readable title for a link element. The
// candidates are tried in order (own text, title attribute, href filename,
// surrounding row text) and the first one of at least 12 characters that is
// not boilerplate wins. When nothing qualifies the cleaned own text is
// returned and callers decide whether it is usable.
func BuildTitle(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	own := CleanTitle(RenderedText(sel))
	if acceptable(own) {
		return own
	}

	if attr, ok := sel.Attr("title"); ok {
		if t := CleanTitle(attr); acceptable(t) {
			return t
		}
	}

	if href, ok := sel.Attr("href"); ok {
		if t := titleFromHref(href); acceptable(t) {
			return t
		}
	}

	if t := titleFromAncestors(sel); t != "" {
		return t
	}
	return own
}

func acceptable(candidate string) bool {
	return utf8.RuneCountInString(candidate) >= minTitleLen && !IsJunkTitle(candidate)
}

func titleFromHref(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	name := href[strings.LastIndex(href, "/")+1:]
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	name = documentExt.ReplaceAllString(name, "")
	return CleanTitle(filenameDivider.Replace(name))
}

func titleFromAncestors(sel *goquery.Selection) string {
	node := sel.Parent()
	for hop := 0; hop < titleAncestorHops && node.Length() > 0; hop++ {
		if isPageLevel(goquery.NodeName(node)) {
			return ""
		}
		text := CleanTitle(RenderedText(node))
		if utf8.RuneCountInString(text) >= minAncestorLen && !IsJunkTitle(text) {
			if utf8.RuneCountInString(text) > ancestorTitleMax {
				text = string([]rune(text)[:ancestorTitleMax]) + "…"
			}
			return text
		}
		node = node.Parent()
	}
	return ""
}
