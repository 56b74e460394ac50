// Package source turns government recruitment listing pages into raw notices.
//
// Every adapter is a Site: a fixed list of endpoints scraped through the
// shared extraction heuristics. Sites never return errors; a failing endpoint
// is logged and contributes nothing to the run.
package source

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/extract"
	"github.com/JakeFAU/govjobs-ingestor/internal/fetcher"
	"github.com/JakeFAU/govjobs-ingestor/internal/metrics"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

const (
	defaultTimeout = 10 * time.Second
	defaultLimit   = 20
	// minTitleRunes rejects fragments that survive the junk check but carry
	// no useful information.
	minTitleRunes = 10
)

// Source produces raw notices for one logical recruitment body.
type Source interface {
	Name() string
	URL() string
	Category() string
	State() string
	FetchRaw(ctx context.Context) []notice.RawNotice
}

// TitleFunc derives a notice title from an anchor.
type TitleFunc func(link *goquery.Selection) string

// DatesFunc derives the published and closing dates for an anchor.
type DatesFunc func(link *goquery.Selection) (published, last *notice.Date)

// DeriveFunc overrides the category and state of a notice from its title.
type DeriveFunc func(title string) (category, state string)

// Endpoint is one listing page of a Site.
type Endpoint struct {
	Label string
	URL   string
	// Base resolves relative links. Defaults to URL.
	Base string
	// Selectors is a CSS selector group for candidate anchors.
	Selectors string
	// Fallback is used only when Selectors matches nothing. An empty
	// Fallback means no fallback.
	Fallback string
	// Rows makes matched elements row containers whose first anchor is the
	// candidate.
	Rows bool
	// Limit caps notices taken from this endpoint.
	Limit int
	// MinPrior consults this endpoint only while the site has fewer than
	// MinPrior notices. Zero always consults it.
	MinPrior int

	Timeout     time.Duration
	Strict      bool
	InsecureTLS bool
	RenderJS    bool

	// SourceName, SourceURL and State override the Site values for notices
	// from this endpoint.
	SourceName string
	SourceURL  string
	State      string

	Relevant Filter
	Title    TitleFunc
	Dates    DatesFunc
	Derive   DeriveFunc
}

// Config describes a Site.
type Config struct {
	Name      string
	URL       string
	Category  string
	State     string
	Endpoints []Endpoint
}

type compiledEndpoint struct {
	Endpoint
	selectors goquery.Matcher
	fallback  goquery.Matcher
}

// Site is a Source backed by a fixed list of endpoints.
type Site struct {
	name      string
	url       string
	category  string
	state     string
	endpoints []compiledEndpoint
	fetcher   fetcher.Fetcher
	logger    *zap.Logger
}

// New compiles cfg into a Site.
func New(cfg Config, f fetcher.Fetcher, logger *zap.Logger) (*Site, error) {
	if cfg.Name == "" {
		return nil, errors.New("source name is required")
	}
	if f == nil {
		return nil, fmt.Errorf("source %s: fetcher is required", cfg.Name)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.State == "" {
		cfg.State = notice.StateCentral
	}
	endpoints := make([]compiledEndpoint, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		compiled, err := compileEndpoint(ep)
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", cfg.Name, err)
		}
		endpoints = append(endpoints, compiled)
	}
	return &Site{
		name:      cfg.Name,
		url:       cfg.URL,
		category:  cfg.Category,
		state:     cfg.State,
		endpoints: endpoints,
		fetcher:   f,
		logger:    logger.Named("source").With(zap.String("source", cfg.Name)),
	}, nil
}

func mustNew(cfg Config, f fetcher.Fetcher, logger *zap.Logger) *Site {
	site, err := New(cfg, f, logger)
	if err != nil {
		panic(err)
	}
	return site
}

func compileEndpoint(ep Endpoint) (compiledEndpoint, error) {
	if ep.URL == "" {
		return compiledEndpoint{}, fmt.Errorf("endpoint %q: url is required", ep.Label)
	}
	if ep.Selectors == "" {
		ep.Selectors = "a[href]"
	}
	if ep.Base == "" {
		ep.Base = ep.URL
	}
	if ep.Limit <= 0 {
		ep.Limit = defaultLimit
	}
	if ep.Timeout <= 0 {
		ep.Timeout = defaultTimeout
	}
	if ep.Title == nil {
		ep.Title = extract.BuildTitle
	}
	if ep.Dates == nil {
		ep.Dates = ancestorDates
	}
	selectors, err := cascadia.Compile(ep.Selectors)
	if err != nil {
		return compiledEndpoint{}, fmt.Errorf("endpoint %q: compile selectors: %w", ep.Label, err)
	}
	compiled := compiledEndpoint{Endpoint: ep, selectors: selectors}
	if ep.Fallback != "" {
		fallback, err := cascadia.Compile(ep.Fallback)
		if err != nil {
			return compiledEndpoint{}, fmt.Errorf("endpoint %q: compile fallback: %w", ep.Label, err)
		}
		compiled.fallback = fallback
	}
	return compiled, nil
}

// Name returns the source name.
func (s *Site) Name() string { return s.name }

// URL returns the source home page.
func (s *Site) URL() string { return s.url }

// Category returns the default category.
func (s *Site) Category() string { return s.category }

// State returns the default state.
func (s *Site) State() string { return s.state }

// FetchRaw scrapes every endpoint in order.
func (s *Site) FetchRaw(ctx context.Context) []notice.RawNotice {
	var notices []notice.RawNotice
	for _, ep := range s.endpoints {
		if ctx.Err() != nil {
			break
		}
		if ep.MinPrior > 0 && len(notices) >= ep.MinPrior {
			continue
		}
		found, err := s.scrape(ctx, ep)
		if err != nil {
			metrics.ObserveSourceFailure(s.name)
			s.logger.Warn("endpoint failed",
				zap.String("endpoint", ep.Label),
				zap.String("url", ep.URL),
				zap.Error(err),
			)
			continue
		}
		s.logger.Info("endpoint scraped",
			zap.String("endpoint", ep.Label),
			zap.Int("notices", len(found)),
		)
		notices = append(notices, found...)
	}
	s.logger.Info("source fetched", zap.Int("notices", len(notices)))
	return notices
}

func (s *Site) scrape(ctx context.Context, ep compiledEndpoint) ([]notice.RawNotice, error) {
	page, err := s.fetcher.Fetch(ctx, fetcher.Request{
		URL:         ep.URL,
		Timeout:     ep.Timeout,
		Lax:         !ep.Strict,
		InsecureTLS: ep.InsecureTLS,
		RenderJS:    ep.RenderJS,
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", ep.URL, err)
	}
	if page.Doc == nil {
		return nil, fmt.Errorf("fetch %s: empty document", ep.URL)
	}
	return s.extract(page.Doc.Selection, ep), nil
}

func (s *Site) extract(doc *goquery.Selection, ep compiledEndpoint) []notice.RawNotice {
	candidates := doc.FindMatcher(ep.selectors)
	if candidates.Length() == 0 && ep.fallback != nil {
		candidates = doc.FindMatcher(ep.fallback)
	}

	var out []notice.RawNotice
	candidates.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel
		if ep.Rows && goquery.NodeName(sel) != "a" {
			link = sel.Find("a").First()
		}
		if link.Length() == 0 {
			return true
		}
		raw, ok := s.toNotice(link, ep)
		if !ok {
			return true
		}
		out = append(out, raw)
		return len(out) < ep.Limit
	})
	return out
}

func (s *Site) toNotice(link *goquery.Selection, ep compiledEndpoint) (notice.RawNotice, bool) {
	title := ep.Title(link)
	if utf8.RuneCountInString(title) < minTitleRunes || extract.IsJunkTitle(title) {
		return notice.RawNotice{}, false
	}
	if ep.Relevant != nil && !ep.Relevant.Match(title) {
		return notice.RawNotice{}, false
	}
	href, _ := link.Attr("href")
	if !extract.IsNavigableHref(href) {
		return notice.RawNotice{}, false
	}
	published, last := ep.Dates(link)

	raw := notice.RawNotice{
		Title:               extract.CleanTitle(title),
		ApplyURL:            extract.AbsoluteURL(ep.Base, href),
		PublishedDate:       published,
		LastDate:            last,
		SourceName:          firstNonEmpty(ep.SourceName, s.name),
		SourceURL:           firstNonEmpty(ep.SourceURL, s.url),
		Category:            s.category,
		State:               firstNonEmpty(ep.State, s.state),
		NoticeType:          extract.CategorizeNoticeType(title),
		EngineeringBranches: extract.InferEngineeringBranches(title),
	}
	if ep.Derive != nil {
		raw.Category, raw.State = ep.Derive(title)
	}
	return raw, true
}

func ancestorDates(link *goquery.Selection) (*notice.Date, *notice.Date) {
	return extract.DateNear(link, 0), extract.DateNear(link, 1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
