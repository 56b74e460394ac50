package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// NewPSU scrapes central public sector undertakings, led by ONGC careers.
func NewPSU(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "PSU Jobs (ONGC & Central PSUs)",
		URL:      "https://www.ongcindia.com",
		Category: "PSU",
		Endpoints: []Endpoint{{
			Label: "ONGC careers",
			URL:   "https://www.ongcindia.com/wps/wcm/connect/en/career/",
			Base:  "https://www.ongcindia.com",
			Selectors: "a[href*='recruit'], a[href*='career'], a[href*='notification'], " +
				"a[href*='vacancy'], a[href*='pdf'], table tr a, ul li a, .ibm-columns a",
			Relevant: Keywords{
				"recruit", "vacancy", "notification", "career", "job", "post", "engineer",
				"officer", "apprentice",
			},
		}},
	}, f, logger)
}
