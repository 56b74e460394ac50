package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// The main ssc.gov.in portal is a single-page app, so the regional offices'
// static pages come first and the rendered portal is the last resort.
var sscRelevant = Keywords{
	"recruitment", "vacancy", "notification", "adverti", "selection", "examination",
	"result", "admit card", "cgl", "chsl", "gd", "cpo", "steno", "mts", "phase",
	"call letter", "cut off", "merit list",
}

const sscSelectors = "table tr td a, ul li a, .content a, p a, div a"

// NewSSC scrapes Staff Selection Commission notices.
func NewSSC(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "Staff Selection Commission (SSC)",
		URL:      "https://ssc.gov.in",
		Category: "SSC",
		Endpoints: []Endpoint{
			{
				Label:       "SSC NR (Northern Region)",
				URL:         "https://sscnr.nic.in/newpages/latest.php",
				Base:        "https://sscnr.nic.in",
				Selectors:   sscSelectors,
				Fallback:    "a[href]",
				Timeout:     15 * time.Second,
				InsecureTLS: true,
				Relevant:    sscRelevant,
			},
			{
				Label:       "SSC NER (North Eastern Region)",
				URL:         "https://sscner.nic.in/newpages/latest.php",
				Base:        "https://sscner.nic.in",
				Selectors:   sscSelectors,
				Fallback:    "a[href]",
				MinPrior:    5,
				Timeout:     15 * time.Second,
				InsecureTLS: true,
				Relevant:    sscRelevant,
			},
			{
				Label:     "SSC portal",
				URL:       "https://ssc.gov.in/home/notice-board",
				Base:      "https://ssc.gov.in",
				Selectors: "a[href]",
				MinPrior:  5,
				Timeout:   30 * time.Second,
				RenderJS:  true,
				Relevant:  sscRelevant,
			},
		},
	}, f, logger)
}
