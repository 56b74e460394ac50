// Package notice defines core types shared across the ingestion pipeline.
package notice

import (
	"errors"
	"time"
)

// Sentinel errors returned by Store implementations.
var (
	ErrDuplicate = errors.New("notice with content hash already exists")
	ErrNotFound  = errors.New("notice not found")
)

// Category is the closed set of recruitment categories a stored notice may carry.
type Category string

// Category values persisted on stored notices.
const (
	CategoryBank     Category = "BANK"
	CategorySSC      Category = "SSC"
	CategoryRailways Category = "RAILWAYS"
	CategoryUPSC     Category = "UPSC"
	CategoryPSU      Category = "PSU"
	CategoryState    Category = "STATE"
	CategoryDefence  Category = "DEFENCE"
	CategoryMedical  Category = "MEDICAL"
	CategoryOthers   Category = "OTHERS"
)

// Categories lists every valid category in display order.
func Categories() []Category {
	return []Category{
		CategoryBank, CategorySSC, CategoryRailways, CategoryUPSC, CategoryPSU,
		CategoryState, CategoryDefence, CategoryMedical, CategoryOthers,
	}
}

// Type classifies what kind of announcement a notice is.
type Type string

// Notice types assigned by title heuristics.
const (
	TypeResult         Type = "RESULT"
	TypeExamAdmitCard  Type = "EXAM_ADMIT_CARD"
	TypeCalendar       Type = "CALENDAR"
	TypeApprenticeship Type = "APPRENTICESHIP"
	TypeRecruitment    Type = "RECRUITMENT"
	TypeGeneralInfo    Type = "GENERAL_INFO"
)

// StateCentral is the state assigned to notices without a regional scope.
const StateCentral = "Central"

// RawNotice is a record extracted from a source page before normalization.
type RawNotice struct {
	Title               string
	ApplyURL            string
	PublishedDate       *Date
	LastDate            *Date
	SourceName          string
	SourceURL           string
	Category            string
	State               string
	NoticeType          Type
	EngineeringBranches []string
}

// StoredNotice is the canonical, deduplicated record persisted in the store.
type StoredNotice struct {
	ID                  string    `json:"id"`
	Title               string    `json:"title"`
	Category            Category  `json:"category"`
	State               string    `json:"state"`
	NoticeType          Type      `json:"notice_type"`
	EngineeringBranches []string  `json:"engineering_branches,omitempty"`
	SourceName          string    `json:"source_name"`
	SourceURL           string    `json:"source_url"`
	ApplyURL            string    `json:"apply_url"`
	PublishedDate       *Date     `json:"published_date,omitempty"`
	LastDate            *Date     `json:"last_date,omitempty"`
	ContentHash         string    `json:"content_hash"`
	FetchedAt           time.Time `json:"fetched_at"`
}

// SourceResult captures per-source counters for one run.
type SourceResult struct {
	Name     string        `json:"name"`
	Fetched  int           `json:"fetched"`
	Saved    int           `json:"saved"`
	Skipped  int           `json:"skipped"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration"`
	// Failed is set when the source itself broke down mid-run; that failure
	// is included in Errors.
	Failed bool `json:"failed,omitempty"`
}

// NoticeErrors is Errors minus the source-level failure, if any.
func (s SourceResult) NoticeErrors() int {
	if s.Failed {
		return s.Errors - 1
	}
	return s.Errors
}

// RunResult aggregates the outcome of one orchestration pass. A zero value
// means the run was rejected because another run was active.
type RunResult struct {
	// Fetched counts every notice the sources returned; Total counts the
	// ones that reached storage (blank titles are ignored before that).
	Fetched    int            `json:"fetched"`
	Total      int            `json:"total"`
	Saved      int            `json:"saved"`
	Skipped    int            `json:"skipped"`
	Errors     int            `json:"errors"`
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceResult `json:"sources,omitempty"`
}

// IsZero reports whether the result carries no run at all.
func (r RunResult) IsZero() bool {
	return r.Fetched == 0 && r.Total == 0 && r.Saved == 0 && r.Skipped == 0 && r.Errors == 0 &&
		r.StartedAt.IsZero() && len(r.Sources) == 0
}

// SavedEvent is published for every newly stored notice.
type SavedEvent struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Category    Category  `json:"category"`
	State       string    `json:"state"`
	NoticeType  Type      `json:"notice_type"`
	SourceName  string    `json:"source_name"`
	ApplyURL    string    `json:"apply_url"`
	LastDate    *Date     `json:"last_date,omitempty"`
	ContentHash string    `json:"content_hash"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// NewSavedEvent projects a stored notice into its event payload.
func NewSavedEvent(n StoredNotice) SavedEvent {
	return SavedEvent{
		ID:          n.ID,
		Title:       n.Title,
		Category:    n.Category,
		State:       n.State,
		NoticeType:  n.NoticeType,
		SourceName:  n.SourceName,
		ApplyURL:    n.ApplyURL,
		LastDate:    n.LastDate,
		ContentHash: n.ContentHash,
		FetchedAt:   n.FetchedAt,
	}
}
