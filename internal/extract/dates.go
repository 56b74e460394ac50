package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

const dateAncestorHops = 5

const monthAlt = `(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*`

// dateShape matches D-M-YYYY (with - . or / separators), D Month YYYY and
// Month D, YYYY.
var dateShape = regexp.MustCompile(`(?i)` +
	`\b\d{1,2}[-./]\d{1,2}[-./]\d{4}\b` +
	`|\b\d{1,2}(?:st|nd|rd|th)?\s+` + monthAlt + `[,.\-]?\s*(?:-\s*)?\d{4}\b` +
	`|\b` + monthAlt + `\s+\d{1,2}(?:st|nd|rd|th)?[,.\-]?\s*(?:-\s*)?\d{4}\b`)

var (
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)\b`)
	monthDashYear = regexp.MustCompile(`(?i)([a-z]+)[,.]?\s*(?:\s-|-\s)\s*(\d{4})`)
	monthDotSpace = regexp.MustCompile(`(?i)\b([a-z]{3,9})\.\s`)
)

// dateLayouts are tried in order; the first successful parse wins.
var dateLayouts = []string{
	"02-01-2006",
	"02/01/2006",
	"02.01.2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"January 2, 2006",
	"2006-01-02",
	"2-01-2006",
	"02 Jan, 2006",
	"2/1/2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"Jan 2, 2006",
	"2 January 2006",
	"02 January 2006",
	"2 January, 2006",
	"2.1.2006",
	"2-1-2006",
	"January 2 2006",
	"Jan 2 2006",
}

// rowBoundaryTags end the upward date search once searched.
var rowBoundaryTags = map[string]struct{}{"tr": {}, "li": {}}

// fullTextTags are searched with their whole rendered text rather than only
// their direct text nodes.
var fullTextTags = map[string]struct{}{
	"tr": {}, "li": {}, "p": {}, "td": {}, "th": {}, "span": {}, "a": {},
}

// ExtractDate returns the index-th date-shaped substring of text, or "" when
// there are not enough matches.
func ExtractDate(text string, index int) string {
	if index < 0 || text == "" {
		return ""
	}
	matches := dateShape.FindAllString(text, index+1)
	if len(matches) <= index {
		return ""
	}
	return matches[index]
}

// ExtractDateFromAncestor walks up from sel (at most five levels) and returns
// the index-th date found in the nearest element that has one. The walk never
// crosses a table row or list item, so dates from neighbouring rows are not
// attributed to this element.
func ExtractDateFromAncestor(sel *goquery.Selection, index int) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	node := sel.First()
	for depth := 0; depth < dateAncestorHops && node.Length() > 0; depth++ {
		tag := goquery.NodeName(node)
		if depth > 0 && isPageLevel(tag) {
			break
		}
		var text string
		if _, full := fullTextTags[tag]; full {
			text = RenderedText(node)
		} else {
			text = ownText(node)
		}
		if found := ExtractDate(text, index); found != "" {
			return found
		}
		if _, boundary := rowBoundaryTags[tag]; boundary {
			break
		}
		node = node.Parent()
	}
	return ""
}

// ParseDate converts a loosely formatted date string into a calendar date.
// It returns nil when no known layout matches.
func ParseDate(s string) *notice.Date {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = monthDashYear.ReplaceAllString(s, "$1 $2")
	s = monthDotSpace.ReplaceAllString(s, "$1 ")
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			d := notice.DateOf(t)
			return &d
		}
	}
	return nil
}

// DateNear is shorthand for parsing the index-th date around sel.
func DateNear(sel *goquery.Selection, index int) *notice.Date {
	return ParseDate(ExtractDateFromAncestor(sel, index))
}
