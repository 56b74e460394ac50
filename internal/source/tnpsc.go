package source

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/extract"
	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// tnpscDate matches the purely numeric dates the TNPSC home page prints next
// to each link, including space-separated ones.
var (
	tnpscDate      = regexp.MustCompile(`\d{2}[-./ ]\d{2}[-./ ]\d{4}`)
	tnpscSeparator = strings.NewReplacer(".", "-", "/", "-", " ", "-")
)

// NewTNPSC scrapes the Tamil Nadu Public Service Commission home page.
func NewTNPSC(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "TNPSC (Tamil Nadu Public Service Commission)",
		URL:      "https://www.tnpsc.gov.in",
		Category: "STATE",
		State:    "Tamil Nadu",
		Endpoints: []Endpoint{{
			Label: "TNPSC home",
			URL:   "https://www.tnpsc.gov.in",
			Selectors: "a[href*='notification'], a[href*='Notification'], a[href*='recruit'], " +
				"a[href*='Recruit'], a[href*='pdf'], a[href*='vacancy'], a[href*='group']",
			Fallback:    "table tr a, ul li a",
			Limit:       30,
			Timeout:     15 * time.Second,
			InsecureTLS: true,
			Relevant: Keywords{
				"recruit", "notification", "post", "exam", "vacancy", "selection", "group",
				"combined", "tnpsc",
			},
			Title: func(link *goquery.Selection) string {
				return extract.CleanTitle(extract.RenderedText(link))
			},
			Dates: tnpscDates,
		}},
	}, f, logger)
}

// tnpscDates reads the first and second numeric dates from the link's parent.
func tnpscDates(link *goquery.Selection) (*notice.Date, *notice.Date) {
	text := extract.RenderedText(link.Parent())
	matches := tnpscDate.FindAllString(text, 2)
	var published, last *notice.Date
	if len(matches) > 0 {
		published = extract.ParseDate(tnpscSeparator.Replace(matches[0]))
	}
	if len(matches) > 1 {
		last = extract.ParseDate(tnpscSeparator.Replace(matches[1]))
	}
	return published, last
}
