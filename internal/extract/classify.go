package extract

import (
	"regexp"
	"strings"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// Engineering branch tags.
const (
	BranchCivil       = "CIVIL"
	BranchMechanical  = "MECH"
	BranchElectrical  = "EEE"
	BranchElectronics = "ECE"
	BranchComputer    = "CSE"
	BranchChemical    = "CHEM"
	BranchInstrument  = "INST"
	BranchGeneral     = "GENERAL_ENGG"
)

type keywordRule[T any] struct {
	tag      T
	keywords []string
}

// noticeTypeRules are evaluated in order; the first hit decides the type.
var noticeTypeRules = []keywordRule[notice.Type]{
	{notice.TypeResult, []string{"result", "merit list", "selection list", "marks", "cut off", "score"}},
	{notice.TypeExamAdmitCard, []string{"admit card", "hall ticket", "exam date", "interview schedule", "call letter"}},
	{notice.TypeCalendar, []string{"calendar", "planner", "schedule"}},
	{notice.TypeApprenticeship, []string{"apprentice", "nats", "trade apprentice", "act apprentice", "apprenticeship"}},
	{notice.TypeRecruitment, []string{"recruit", "vacancy", "notification", "advt", "apply", "post", "officer", "clerk"}},
}

// branchRules are non-exclusive; padded keywords match whole words only.
var branchRules = []keywordRule[string]{
	{BranchCivil, []string{"civil", "structural"}},
	{BranchMechanical, []string{"mechanical", " mech ", "machinist", "fitter", "welder", "boiler"}},
	{BranchElectrical, []string{"electrical", " eee ", "electrician"}},
	{BranchElectronics, []string{"electronics", " ece ", "radio", "telecommunication"}},
	{BranchComputer, []string{"computer", " cse ", " it ", "software", "programmer", "data entry"}},
	{BranchChemical, []string{"chemical", "petrochem"}},
	{BranchInstrument, []string{"instrumentation", "instrument"}},
}

var genericEngineering = []string{
	"engineer", " je ", " get ", "technical officer", "graduate engineer", "junior engineer",
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// keywordText lower-cases title, turns punctuation into spaces and pads it so
// that " it " style keywords match at the edges too.
func keywordText(title string) string {
	return " " + strings.TrimSpace(nonWord.ReplaceAllString(strings.ToLower(title), " ")) + " "
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// CategorizeNoticeType classifies a title by keyword. Results and admit cards
// win over recruitment so "Recruitment Result" is a result.
func CategorizeNoticeType(title string) notice.Type {
	text := keywordText(title)
	for _, rule := range noticeTypeRules {
		if containsAny(text, rule.keywords) {
			return rule.tag
		}
	}
	return notice.TypeGeneralInfo
}

// InferEngineeringBranches returns every branch tag whose keywords appear in
// title, in fixed order. GENERAL_ENGG is returned only when no specific branch
// matched but the title is clearly an engineering post. Nil means none.
func InferEngineeringBranches(title string) []string {
	text := keywordText(title)
	var branches []string
	for _, rule := range branchRules {
		if containsAny(text, rule.keywords) {
			branches = append(branches, rule.tag)
		}
	}
	if len(branches) == 0 && containsAny(text, genericEngineering) {
		branches = append(branches, BranchGeneral)
	}
	return branches
}
