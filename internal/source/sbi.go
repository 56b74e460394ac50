package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// NewSBI scrapes SBI current openings. bank.sbi serves a valid chain and
// proper statuses, so it is the one source fetched strictly.
func NewSBI(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "State Bank of India (SBI)",
		URL:      "https://bank.sbi",
		Category: "BANK",
		Endpoints: []Endpoint{{
			Label:     "SBI current openings",
			URL:       "https://bank.sbi/web/careers/current-openings",
			Base:      "https://bank.sbi",
			Selectors: "table a, .portlet-body a, .career-item a, a[href*='recruit'], a[href*='career']",
			Strict:    true,
			Relevant: Keywords{
				"recruit", "officer", "clerk", "specialist", "appointment", "vacancy", "post",
				"notification",
			},
		}},
	}, f, logger)
}
