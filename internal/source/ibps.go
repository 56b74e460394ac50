package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// NewIBPS scrapes the IBPS recruitment category page.
func NewIBPS(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "IBPS (Institute of Banking Personnel Selection)",
		URL:      "https://www.ibps.in",
		Category: "BANK",
		Endpoints: []Endpoint{{
			Label:     "IBPS recruitment",
			URL:       "https://www.ibps.in/category/recruitment/",
			Base:      "https://www.ibps.in",
			Selectors: "article a, h2 a, h3 a, .entry-title a, .post-title a",
			Fallback:  "a[href*='ibps'], a[href*='recruit'], a[href*='notification']",
			Limit:     25,
			Relevant: Keywords{
				"recruit", "notification", "vacancy", "ibps", "clerk", "po ", "officer",
				"specialist", "so ", "rrb", "crp", "advt", "advertisement", "apply", "result",
				"admit", "score card", "selection", "interview", "exam", "mains", "prelim",
			},
		}},
	}, f, logger)
}
