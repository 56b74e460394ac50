package source

import (
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
)

var (
	// medicalRelevant is broad; the pages it guards are already recruitment listings.
	medicalRelevant = Keywords{
		"recruit", "vacancy", "notification", "advt", "advertisement", "job", "doctor",
		"nurse", "physician", "pharmacist", "radiographer", "technician", "specialist",
		"surgeon", "dental", "paramedic", "anm", "assistant", "officer", "engineer",
		"clerk", "mrb", "aiims", "esic",
	}
	// recruitmentAction requires an explicit hiring word, for pages that mix
	// notices with general programme content.
	recruitmentAction = Keywords{
		"recruit", "vacancy", "notification", "advt", "advertisement", "application",
		"selection", "walk-in", "walkin", "engage", "appoint", "post of", "position",
		"hiring",
	}
)

// NewMedical scrapes central and Tamil Nadu health-sector recruiters.
func NewMedical(f fetcher.Fetcher, logger *zap.Logger) *Site {
	return mustNew(Config{
		Name:     "Medical / Health Govt Jobs (AIIMS, ESIC, NHM, MRB)",
		URL:      "https://www.aiims.edu",
		Category: "MEDICAL",
		Endpoints: []Endpoint{
			{
				Label:      "AIIMS New Delhi",
				URL:        "https://www.aiims.edu/en/notices.html",
				Base:       "https://www.aiims.edu",
				Selectors:  "a[href*='recruit'], a[href*='notice'], a[href*='vacancy'], a[href*='pdf']",
				Fallback:   "table tr a, ul li a, div a",
				SourceName: "AIIMS New Delhi",
				SourceURL:  "https://www.aiims.edu",
				Relevant:   medicalRelevant,
			},
			{
				// ESIC answers with an unrecognized_name TLS alert.
				Label:       "ESIC (Employees' State Insurance Corporation)",
				URL:         "https://www.esic.gov.in/recruitments",
				Base:        "https://www.esic.gov.in",
				Selectors:   "a[href*='recruit'], a[href*='pdf'], a[href*='vacancy'], table tr a, ul li a",
				InsecureTLS: true,
				SourceName:  "ESIC (Employees' State Insurance Corporation)",
				SourceURL:   "https://www.esic.gov.in",
				Relevant:    medicalRelevant,
			},
			{
				Label:       "NHM (National Health Mission)",
				URL:         "https://nhm.gov.in/index1.php?lang=1&level=1&sublinkid=971&lid=235",
				Base:        "https://nhm.gov.in",
				Selectors:   "a[href*='.pdf'], a[href*='recruit'], a[href*='vacancy'], a[href*='advt'], table td a, ul li a",
				InsecureTLS: true,
				SourceName:  "NHM (National Health Mission)",
				SourceURL:   "https://nhm.gov.in",
				Relevant:    recruitmentAction,
			},
			{
				Label:       "MRB Tamil Nadu (Medical Recruitment Board)",
				URL:         "https://www.mrb.tn.gov.in",
				Selectors:   "a[href*='recruit'], a[href*='notification'], a[href*='pdf'], a[href*='vacancy'], table tr a, ul li a",
				Fallback:    "a",
				InsecureTLS: true,
				SourceName:  "MRB Tamil Nadu (Medical Recruitment Board)",
				SourceURL:   "https://www.mrb.tn.gov.in",
				State:       "Tamil Nadu",
				Relevant:    medicalRelevant,
			},
		},
	}, f, logger)
}
