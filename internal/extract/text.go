// Package extract holds the layout-agnostic heuristics that turn noisy listing
// markup into notice fields. Everything here is pure: no I/O, no logging.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

const (
	displayTitleMax  = 200
	displayTitleKeep = 197
)

var displayPrefix = regexp.MustCompile(`(?i)^(Update:|Flash:|New:|Latest:|Notice:|Advertisement:|Advt:|Notification:)\s*`)

// junkTitles is matched against the lower-cased, trimmed candidate.
var junkTitles = map[string]struct{}{
	"click here": {}, "download": {}, "view": {}, "here": {}, "pdf": {},
	"read more": {}, "more details": {}, "details": {}, "apply": {}, "apply now": {},
	"apply online": {}, "apply here": {}, "link": {}, "advertisement": {}, "advt": {},
	"notification": {}, "official notification": {}, "official website": {}, "visit": {},
	"open": {}, "see details": {}, "view details": {}, "check here": {}, "know more": {},
	"official": {}, "english": {}, "hindi": {}, "corrigendum": {}, "addendum": {},
	"important notice": {}, "notice": {}, "home": {}, "news": {}, "latest news": {},
	"recruitment": {}, "vacancy": {}, "result": {}, "answer key": {}, "about us": {},
	"contact us": {}, "skip to main content": {}, "login": {}, "register": {},
	"syllabus": {}, "careers": {}, "tenders": {}, "rti": {}, "archives": {},
}

// inlineTags do not introduce a word break when rendering text.
var inlineTags = map[string]struct{}{
	"a": {}, "abbr": {}, "b": {}, "em": {}, "font": {}, "i": {}, "label": {},
	"mark": {}, "small": {}, "span": {}, "strong": {}, "sub": {}, "sup": {}, "u": {},
}

// pageLevelTags bound every upward walk.
var pageLevelTags = map[string]struct{}{
	"body": {}, "html": {}, "main": {}, "article": {},
}

// CleanTitle applies NFKC normalization and collapses whitespace runs.
func CleanTitle(raw string) string {
	return strings.Join(strings.Fields(norm.NFKC.String(raw)), " ")
}

// NormalizeTitleForDisplay strips bulletin prefixes such as "Update:" and caps
// the title at 200 characters.
func NormalizeTitleForDisplay(raw string) string {
	title := displayPrefix.ReplaceAllString(CleanTitle(raw), "")
	if utf8.RuneCountInString(title) > displayTitleMax {
		title = string([]rune(title)[:displayTitleKeep]) + "..."
	}
	return strings.TrimSpace(title)
}

// IsJunkTitle reports whether text is too short or is navigation boilerplate.
func IsJunkTitle(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" || utf8.RuneCountInString(t) < 6 {
		return true
	}
	_, junk := junkTitles[t]
	return junk
}

// RenderedText returns the visible text of the selection's first node with
// block-level boundaries rendered as spaces and whitespace collapsed.
func RenderedText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var b strings.Builder
	renderNode(&b, sel.Get(0))
	return strings.Join(strings.Fields(b.String()), " ")
}

func renderNode(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		if n.Data == "script" || n.Data == "style" {
			return
		}
	}
	_, inline := inlineTags[n.Data]
	breaks := n.Type == html.ElementNode && !inline
	if breaks {
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(b, c)
	}
	if breaks {
		b.WriteByte(' ')
	}
}

// ownText returns only the direct text-node children of the first node.
func ownText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	var parts []string
	for c := sel.Get(0).FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			parts = append(parts, c.Data)
		}
	}
	return strings.Join(strings.Fields(strings.Join(parts, " ")), " ")
}

func isPageLevel(tag string) bool {
	_, ok := pageLevelTags[tag]
	return ok
}
