package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// Results, answer keys and similar updates crowd out fresh vacancies on the
// commission home pages, so they are dropped here.
var statePSCRelevant = Excluding{
	Exclude: anyOf{
		Keywords{
			"result", "answer key", "admit card", "syllabus", "mark sheet", "corrigendum",
			"examination rules",
		},
		ExactTitles{"odisha public service commission (opsc)"},
	},
	Include: Keywords{
		"recruit", "vacancy", "notification", "advt", "advertisement", "post", "officer",
		"engineer", "inspector", "grade", "group", "combined", "direct recruit",
	},
}

// NewStatePSC scrapes state public service commissions.
func NewStatePSC(f fetcher.Fetcher, logger *zap.Logger) *Site {
	endpoint := func(label, url, base, selectors, state string, limit int) Endpoint {
		return Endpoint{
			Label:       label,
			URL:         url,
			Base:        base,
			Selectors:   selectors,
			Limit:       limit,
			Timeout:     15 * time.Second,
			InsecureTLS: true,
			SourceName:  label,
			SourceURL:   base,
			State:       state,
			Relevant:    statePSCRelevant,
		}
	}
	return mustNew(Config{
		Name:     "State Government PSC Jobs",
		URL:      "https://www.tnpsc.gov.in",
		Category: "STATE",
		State:    "Various States",
		Endpoints: []Endpoint{
			endpoint("TNPSC (Tamil Nadu PSC)", "https://www.tnpsc.gov.in/notifications.html", "https://www.tnpsc.gov.in",
				"table tr td a, ul li a, .notification a, a[href*='pdf'], a[href]", "Tamil Nadu", 15),
			endpoint("KPSC (Karnataka PSC)", "https://kpsc.kar.nic.in/recruitment.aspx", "https://kpsc.kar.nic.in",
				"table tr td a, ul li a, a[href*='pdf'], a[href*='recruit'], a[href]", "Karnataka", 10),
			endpoint("MPPSC (Madhya Pradesh PSC)", "https://mppsc.mp.gov.in/Advertisements", "https://mppsc.mp.gov.in",
				"table tr td a, ul li a, a[href*='pdf'], .advt a, a[href]", "Madhya Pradesh", 10),
			endpoint("OPSC (Odisha PSC)", "https://opsc.gov.in/Advt.aspx", "https://opsc.gov.in",
				"table tr td a, ul li a, a[href*='pdf'], a[href*='advt'], a[href]", "Odisha", 10),
		},
	}, f, logger)
}
