package source

import (
	"time"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

var rrbRelevant = Keywords{
	"recruitment", "vacancy", "notification", "ntpc", "group d", "group-d", "alp",
	"technician", "je ", "junior engineer", "rrb", "rrc", "railway", "result", "admit",
	"selection", "apprent", "loco pilot", "paramedical", "ministerial",
}

const rrbSelectors = "a[href*='pdf'], a[href*='PDF'], a[href*='notification'], a[href*='Notification'], " +
	"a[href*='Recruitment'], a[href*='advt'], a[href*='Advt'], table tr td a, ul li a"

// NewRRB scrapes railway recruitment boards. rrbcdg.gov.in is unreachable
// from outside India, so RRC Northern Railway leads and two regional boards
// fill in when it is sparse.
func NewRRB(f fetcher.Fetcher, logger *zap.Logger) *Site {
	endpoint := func(label, url, base string, minPrior int) Endpoint {
		return Endpoint{
			Label:       label,
			URL:         url,
			Base:        base,
			Selectors:   rrbSelectors,
			Fallback:    "a[href]",
			Limit:       15,
			MinPrior:    minPrior,
			Timeout:     20 * time.Second,
			InsecureTLS: true,
			Relevant:    rrbRelevant,
		}
	}
	return mustNew(Config{
		Name:     "Railway Recruitment Board (RRB)",
		URL:      "https://indianrailways.gov.in",
		Category: "RAILWAYS",
		Endpoints: []Endpoint{
			endpoint("RRC NR (Northern Railway)", "https://www.rrcnr.org/recr.aspx", "https://www.rrcnr.org", 0),
			endpoint("RRB Bhopal", "https://rrbbhopal.gov.in/", "https://rrbbhopal.gov.in", 8),
			endpoint("RRB Mumbai", "https://www.rrbmumbai.gov.in/", "https://www.rrbmumbai.gov.in", 8),
		},
	}, f, logger)
}
