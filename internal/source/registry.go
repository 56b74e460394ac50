package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

// Constructor builds a Source around a fetcher.
type Constructor func(f fetcher.Fetcher, logger *zap.Logger) *Site

// registry lists every shipped source in run order.
var registry = []struct {
	key   string
	build Constructor
}{
	{"ssc", NewSSC},
	{"rrb", NewRRB},
	{"ibps", NewIBPS},
	{"sbi", NewSBI},
	{"upsc", NewUPSC},
	{"psu", NewPSU},
	{"tnpsc", NewTNPSC},
	{"employment_news", NewEmploymentNews},
	{"state_psc", NewStatePSC},
	{"medical", NewMedical},
}

// Keys returns the registry keys in run order.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for _, entry := range registry {
		keys = append(keys, entry.key)
	}
	return keys
}

// Build constructs the enabled sources in run order. An empty enabled list
// selects every source.
func Build(f fetcher.Fetcher, logger *zap.Logger, enabled []string) []Source {
	want := make(map[string]bool, len(enabled))
	for _, key := range enabled {
		want[key] = true
	}
	var out []Source
	for _, entry := range registry {
		if len(want) > 0 && !want[entry.key] {
			continue
		}
		out = append(out, entry.build(f, logger))
	}
	return out
}
