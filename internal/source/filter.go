package source

import "strings"

// Filter decides whether a title belongs to a source's recruitment feed.
type Filter interface {
	Match(title string) bool
}

// Keywords matches titles containing any keyword, case-insensitively.
// Keywords are substrings, so "recruit" also matches "recruitment".
type Keywords []string

// Match implements Filter.
func (k Keywords) Match(title string) bool {
	t := strings.ToLower(title)
	for _, kw := range k {
		if strings.Contains(t, kw) {
			return true
		}
	}
	return false
}

// Excluding rejects titles matching exclude before consulting include.
type Excluding struct {
	Include Filter
	Exclude Filter
}

// Match implements Filter.
func (e Excluding) Match(title string) bool {
	if e.Exclude != nil && e.Exclude.Match(title) {
		return false
	}
	return e.Include == nil || e.Include.Match(title)
}

// ExactTitles matches whole titles, case-insensitively.
type ExactTitles []string

// Match implements Filter.
func (e ExactTitles) Match(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	for _, candidate := range e {
		if t == candidate {
			return true
		}
	}
	return false
}

type anyOf []Filter

func (a anyOf) Match(title string) bool {
	for _, f := range a {
		if f.Match(title) {
			return true
		}
	}
	return false
}
