package source

import (
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

type keywordValue struct {
	value    string
	keywords Keywords
}

// Checked in order; the first match wins.
var (
	employmentNewsCategories = []keywordValue{
		{"BANK", Keywords{"bank", "rbi", "nabard", "ibps"}},
		{"SSC", Keywords{"ssc", "staff selection"}},
		{"RAILWAYS", Keywords{"railway", "rrb"}},
		{"UPSC", Keywords{"upsc", "civil service", "ias"}},
		{"DEFENCE", Keywords{"defence", "army", "navy", "air force"}},
		{"MEDICAL", Keywords{"doctor", "medical", "nurse", "health", "aiims", "esic", "nhm"}},
		{"PSU", Keywords{"psu", "bhel", "ongc", "ntpc"}},
	}
	employmentNewsStates = []keywordValue{
		{"Tamil Nadu", Keywords{"tamil nadu", "tnpsc"}},
		{"Maharashtra", Keywords{"maharashtra"}},
		{"Karnataka", Keywords{"karnataka"}},
		{"Kerala", Keywords{"kerala"}},
		{"Delhi", Keywords{"delhi", "ndmc"}},
		{"Gujarat", Keywords{"gujarat"}},
		{"Rajasthan", Keywords{"rajasthan"}},
		{"Uttar Pradesh", Keywords{"uttar pradesh", "uppsc"}},
	}
)

// NewEmploymentNews scrapes the Employment News advertisement index. Its RSS
// feed resets connections too often to rely on, so the HTML page is used.
// The index spans every recruiter, so category and state come from the title.
func NewEmploymentNews(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "Employment News (Govt of India)",
		URL:      "https://employmentnews.gov.in",
		Category: "OTHERS",
		Endpoints: []Endpoint{{
			Label:       "Employment News advertisements",
			URL:         "https://employmentnews.gov.in/NewVer/Pages/Advt.aspx",
			Base:        "https://employmentnews.gov.in",
			Selectors:   "table tr, .advt-row, ul li, .list-item",
			Fallback:    "a[href*='Advt'], a[href*='advt'], a[href*='pdf'], a[href*='recruitment']",
			Rows:        true,
			Limit:       30,
			InsecureTLS: true,
			Derive:      deriveEmploymentNews,
		}},
	}, f, logger)
}

func deriveEmploymentNews(title string) (string, string) {
	return firstKeywordValue(employmentNewsCategories, title, "OTHERS"),
		firstKeywordValue(employmentNewsStates, title, notice.StateCentral)
}

func firstKeywordValue(table []keywordValue, title, fallback string) string {
	t := strings.ToLower(title)
	for _, entry := range table {
		if entry.keywords.Match(t) {
			return entry.value
		}
	}
	return fallback
}
