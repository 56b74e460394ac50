package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/govjobs-ingestor/internal/extract"
	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

// Outcome reports what Process did with a raw notice.
type Outcome int

// Possible outcomes of processing a single raw notice.
const (
	// OutcomeIgnored means the notice had no usable title and was dropped
	// without touching the store.
	OutcomeIgnored Outcome = iota
	OutcomeSaved
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSaved:
		return "saved"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "ignored"
	}
}

// Processor normalizes raw notices and writes new ones to the store.
type Processor struct {
	store     notice.Store
	hasher    notice.Hasher
	ids       notice.IDGenerator
	clock     notice.Clock
	publisher notice.Publisher
	topic     string
	logger    *zap.Logger
}

// Option customizes a Processor.
type Option func(*Processor)

// WithPublisher announces every newly saved notice on topic.
func WithPublisher(p notice.Publisher, topic string) Option {
	return func(proc *Processor) {
		proc.publisher = p
		proc.topic = topic
	}
}

// NewProcessor wires a Processor.
func NewProcessor(
	store notice.Store,
	hasher notice.Hasher,
	ids notice.IDGenerator,
	clock notice.Clock,
	logger *zap.Logger,
	opts ...Option,
) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &Processor{
		store:  store,
		hasher: hasher,
		ids:    ids,
		clock:  clock,
		logger: logger.Named("ingest"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process stores raw if its content hash is new. A uniqueness violation from
// the store (another writer got there first) is reported as OutcomeSkipped;
// any other store failure is returned as an error.
func (p *Processor) Process(ctx context.Context, raw notice.RawNotice) (Outcome, error) {
	if strings.TrimSpace(raw.Title) == "" {
		return OutcomeIgnored, nil
	}
	title := extract.NormalizeTitleForDisplay(raw.Title)
	if title == "" {
		return OutcomeIgnored, nil
	}
	hash := ContentHash(p.hasher, raw.Title, raw.SourceName)

	exists, err := p.store.ExistsByContentHash(ctx, hash)
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("check content hash: %w", err)
	}
	if exists {
		return OutcomeSkipped, nil
	}

	id, err := p.ids.NewID()
	if err != nil {
		return OutcomeIgnored, fmt.Errorf("generate notice id: %w", err)
	}

	stored := p.build(id, hash, title, raw)
	if err := p.store.Insert(ctx, stored); err != nil {
		if errors.Is(err, notice.ErrDuplicate) {
			p.logger.Debug("notice inserted concurrently",
				zap.String("source", raw.SourceName),
				zap.String("content_hash", hash),
			)
			return OutcomeSkipped, nil
		}
		return OutcomeIgnored, fmt.Errorf("insert notice: %w", err)
	}

	p.logger.Debug("notice saved",
		zap.String("id", stored.ID),
		zap.String("source", stored.SourceName),
		zap.String("category", string(stored.Category)),
		zap.String("title", stored.Title),
	)
	p.publish(ctx, stored)
	return OutcomeSaved, nil
}

func (p *Processor) build(id, hash, title string, raw notice.RawNotice) notice.StoredNotice {
	noticeType := raw.NoticeType
	if noticeType == "" {
		noticeType = extract.CategorizeNoticeType(title)
	}
	branches := raw.EngineeringBranches
	if branches == nil {
		branches = extract.InferEngineeringBranches(title)
	}
	return notice.StoredNotice{
		ID:                  id,
		Title:               title,
		Category:            NormalizeCategory(raw.Category),
		State:               NormalizeState(raw.State),
		NoticeType:          noticeType,
		EngineeringBranches: branches,
		SourceName:          raw.SourceName,
		SourceURL:           raw.SourceURL,
		ApplyURL:            raw.ApplyURL,
		PublishedDate:       raw.PublishedDate,
		LastDate:            raw.LastDate,
		ContentHash:         hash,
		FetchedAt:           p.clock.Now().UTC(),
	}
}

func (p *Processor) publish(ctx context.Context, n notice.StoredNotice) {
	if p.publisher == nil {
		return
	}
	if _, err := p.publisher.Publish(ctx, p.topic, notice.NewSavedEvent(n)); err != nil {
		p.logger.Warn("publish saved notice failed",
			zap.String("id", n.ID),
			zap.String("topic", p.topic),
			zap.Error(err),
		)
	}
}
