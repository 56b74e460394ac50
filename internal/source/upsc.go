package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// NewUPSC scrapes UPSC recruitment advertisements. The apex host is used
// because www.upsc.gov.in presents a different certificate.
func NewUPSC(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "UPSC (Union Public Service Commission)",
		URL:      "https://upsc.gov.in",
		Category: "UPSC",
		Endpoints: []Endpoint{{
			Label:     "UPSC recruitment advertisements",
			URL:       "https://upsc.gov.in/recruitment/recruitment-advertisement",
			Base:      "https://upsc.gov.in",
			Selectors: "a",
			Limit:     25,
			Relevant: Keywords{
				"recruit", "vacancy", "adverti", "exam", "post", "selection", "notification",
				"civil service", "upsc",
			},
		}},
	}, f, logger)
}
