// Package ingest turns raw notices into stored notices: it normalizes
// category and state, derives the content hash and writes each notice at most
// once.
package ingest

import (
	"strings"

	"github.com/JakeFAU/govjobs-ingestor/internal/extract"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

var categorySynonyms = map[string]notice.Category{
	"BANK":             notice.CategoryBank,
	"BANKING":          notice.CategoryBank,
	"SSC":              notice.CategorySSC,
	"RRB":              notice.CategoryRailways,
	"RRC":              notice.CategoryRailways,
	"RAILWAY":          notice.CategoryRailways,
	"RAILWAYS":         notice.CategoryRailways,
	"UPSC":             notice.CategoryUPSC,
	"PSU":              notice.CategoryPSU,
	"STATE":            notice.CategoryState,
	"STATE GOVT":       notice.CategoryState,
	"STATE GOVERNMENT": notice.CategoryState,
	"DEFENCE":          notice.CategoryDefence,
	"DEFENSE":          notice.CategoryDefence,
	"MEDICAL":          notice.CategoryMedical,
	"HEALTH":           notice.CategoryMedical,
	"OTHERS":           notice.CategoryOthers,
}

// stateSynonyms is keyed by the lower-cased input.
var stateSynonyms = map[string]string{
	"central":        notice.StateCentral,
	"all india":      notice.StateCentral,
	"india":          notice.StateCentral,
	"tamil nadu":     "Tamil Nadu",
	"tamilnadu":      "Tamil Nadu",
	"tn":             "Tamil Nadu",
	"tnpsc":          "Tamil Nadu",
	"maharashtra":    "Maharashtra",
	"mh":             "Maharashtra",
	"karnataka":      "Karnataka",
	"ka":             "Karnataka",
	"kerala":         "Kerala",
	"kl":             "Kerala",
	"delhi":          "Delhi",
	"dl":             "Delhi",
	"nct":            "Delhi",
	"gujarat":        "Gujarat",
	"gj":             "Gujarat",
	"rajasthan":      "Rajasthan",
	"rj":             "Rajasthan",
	"uttar pradesh":  "Uttar Pradesh",
	"up":             "Uttar Pradesh",
	"madhya pradesh": "Madhya Pradesh",
	"mp":             "Madhya Pradesh",
	"odisha":         "Odisha",
	"orissa":         "Odisha",
	"od":             "Odisha",
}

// NormalizeCategory maps free text onto the closed category set. It never
// returns anything outside notice.Categories; unknown input is OTHERS.
func NormalizeCategory(raw string) notice.Category {
	key := strings.Join(strings.Fields(strings.ToUpper(raw)), " ")
	if c, ok := categorySynonyms[key]; ok {
		return c
	}
	return notice.CategoryOthers
}

// NormalizeState canonicalizes known state names and abbreviations. Blank
// input is Central; anything unrecognised passes through with its whitespace
// collapsed.
func NormalizeState(raw string) string {
	cleaned := strings.Join(strings.Fields(raw), " ")
	if cleaned == "" {
		return notice.StateCentral
	}
	if s, ok := stateSynonyms[strings.ToLower(cleaned)]; ok {
		return s
	}
	return cleaned
}

// ContentHash derives the idempotency key for a notice from its display title
// and source name. The inputs are normalized the same way on every call path,
// so case and whitespace differences produce the same key.
func ContentHash(h notice.Hasher, title, sourceName string) string {
	display := extract.NormalizeTitleForDisplay(title)
	key := strings.ToLower(strings.TrimSpace(display + "|" + strings.TrimSpace(sourceName)))
	return h.Sum(key)
}
