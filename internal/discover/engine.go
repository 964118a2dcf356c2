// Package discover assembles geo-scoped sections pairing government actions
// with citizen issues, choosing categories from explicit input, a message or
// the geography's own activity.
package discover

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// ErrMissingGeography rejects a request without city, county or state.
var ErrMissingGeography = errors.New("geo.city, geo.county, or geo.state_name is required")

// Branches reported to telemetry.
const (
	BranchCategories = "categories"
	BranchMessage    = "message"
	BranchGeo        = "geo"
)

const (
	// DefaultPerCategory is used when a request gives no positive limit.
	DefaultPerCategory = 5
	// MaxPerCategory caps per-section list length.
	MaxPerCategory = 50
	// topCategoryCount is how many labels the message and geo branches use.
	topCategoryCount = 3
)

// RecordSource evaluates geo queries.
type RecordSource interface {
	GovernmentActions(ctx context.Context, q geo.SourceQuery) ([]domain.SourceRecord, error)
	CitizenIssues(ctx context.Context, q geo.IssueQuery) ([]domain.CitizenIssue, error)
	SourceTagCounts(ctx context.Context, q geo.SourceQuery) (map[string]int, error)
	IssueCategoryCounts(ctx context.Context, q geo.IssueQuery) (map[string]int, error)
}

// Analyzer classifies message text.
type Analyzer interface {
	Analyze(ctx context.Context, text string, opts classifier.Options) *domain.ClassificationResult
}

// Enqueuer accepts text for background enrichment without blocking.
type Enqueuer interface {
	Enqueue(text string) bool
}

// Config tunes the engine. Zero values take defaults.
type Config struct {
	DefaultPerCategory int
	MaxPerCategory     int
	// SectionConcurrency bounds concurrent section builds; 0 is unbounded.
	SectionConcurrency int
}

// Request is one discovery call.
type Request struct {
	Geo         domain.GeoQuery
	Message     string
	Categories  []string
	PerCategory int
}

// Engine runs discovery.
type Engine struct {
	records   RecordSource
	analyzer  Analyzer
	enqueuer  Enqueuer
	cfg       Config
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewEngine wires the engine. A nil enqueuer disables enrichment.
func NewEngine(
	records RecordSource,
	analyzer Analyzer,
	enqueuer Enqueuer,
	cfg Config,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) *Engine {
	if cfg.DefaultPerCategory <= 0 {
		cfg.DefaultPerCategory = DefaultPerCategory
	}
	if cfg.MaxPerCategory <= 0 {
		cfg.MaxPerCategory = MaxPerCategory
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &Engine{
		records:   records,
		analyzer:  analyzer,
		enqueuer:  enqueuer,
		cfg:       cfg,
		logger:    logger,
		telemetry: tp,
	}
}

// PerCategory resolves a requested limit against the engine's bounds.
func (e *Engine) PerCategory(requested int) int {
	if requested <= 0 {
		return e.cfg.DefaultPerCategory
	}
	return min(requested, e.cfg.MaxPerCategory)
}

// Discover picks categories for req and builds one section per category.
// Only a missing geography is an input error; storage failures are returned
// wrapped.
func (e *Engine) Discover(ctx context.Context, req Request) (*domain.DiscoverResult, error) {
	g := req.Geo.Normalized()
	if g.IsEmpty() {
		return nil, ErrMissingGeography
	}

	ctx, span := e.telemetry.StartSpan(ctx, "discover",
		attribute.String("geo.city", g.City),
		attribute.String("geo.county", g.County),
		attribute.String("geo.state_name", g.StateName),
	)
	defer span.End()

	per := e.PerCategory(req.PerCategory)
	result := &domain.DiscoverResult{Geo: g}

	var categories []domain.Label
	switch {
	case len(req.Categories) > 0:
		e.telemetry.RecordDiscover(BranchCategories)
		categories = validCategories(req.Categories)

	case strings.TrimSpace(req.Message) != "":
		e.telemetry.RecordDiscover(BranchMessage)
		fast := e.analyzer.Analyze(ctx, req.Message, classifier.DefaultOptions())
		result.FastClassification = fast
		categories = firstLabels(fast, topCategoryCount)
		e.enqueue(req.Message)

	default:
		e.telemetry.RecordDiscover(BranchGeo)
		top, err := e.TopCategories(ctx, g)
		if err != nil {
			return nil, err
		}
		result.TopCategories = top
		for _, c := range top {
			categories = append(categories, c.Category)
		}
	}

	sections, err := e.sections(ctx, g, categories, per)
	if err != nil {
		return nil, err
	}
	result.Sections = sections
	span.SetAttributes(attribute.Int("sections", len(sections)))
	return result, nil
}

func (e *Engine) enqueue(text string) {
	if e.enqueuer == nil {
		return
	}
	if !e.enqueuer.Enqueue(text) {
		e.logger.Debug("Enrichment not scheduled")
	}
}

// validCategories keeps known labels in input order, without duplicates.
func validCategories(raw []string) []domain.Label {
	seen := make(map[domain.Label]bool, len(raw))
	out := make([]domain.Label, 0, len(raw))
	for _, s := range raw {
		l, err := domain.ParseLabel(s)
		if err != nil || seen[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

func firstLabels(res *domain.ClassificationResult, n int) []domain.Label {
	var out []domain.Label
	if res != nil {
		for _, s := range res.Ranked {
			if len(out) == n {
				break
			}
			out = append(out, s.Label)
		}
	}
	if len(out) == 0 {
		return domain.FallbackCategories()
	}
	return out
}

// TopCategories ranks labels by matching source tags plus matching issue
// categories. Ties keep label declaration order. Without any activity the
// fallback categories are returned with count 0.
func (e *Engine) TopCategories(ctx context.Context, g domain.GeoQuery) ([]domain.CategoryCount, error) {
	tagCounts, err := e.records.SourceTagCounts(ctx, geo.Sources(g))
	if err != nil {
		return nil, fmt.Errorf("count source tags: %w", err)
	}
	issueCounts, err := e.records.IssueCategoryCounts(ctx, geo.Issues(g))
	if err != nil {
		return nil, fmt.Errorf("count issue categories: %w", err)
	}

	counts := make([]domain.CategoryCount, 0, len(domain.AllLabels()))
	for _, l := range domain.AllLabels() {
		counts = append(counts, domain.CategoryCount{
			Category: l,
			Count:    tagCounts[string(l)] + issueCounts[string(l)],
		})
	}
	sort.SliceStable(counts, func(i, j int) bool { return counts[i].Count > counts[j].Count })

	var top []domain.CategoryCount
	for _, c := range counts[:topCategoryCount] {
		if c.Count > 0 {
			top = append(top, c)
		}
	}
	if len(top) == 0 {
		for _, l := range domain.FallbackCategories() {
			top = append(top, domain.CategoryCount{Category: l})
		}
	}
	return top, nil
}

// sections builds one section per category concurrently, in category order.
func (e *Engine) sections(ctx context.Context, g domain.GeoQuery, categories []domain.Label, per int) ([]domain.Section, error) {
	out := make([]domain.Section, len(categories))

	eg, egCtx := errgroup.WithContext(ctx)
	if e.cfg.SectionConcurrency > 0 {
		eg.SetLimit(e.cfg.SectionConcurrency)
	}
	for i, c := range categories {
		eg.Go(func() error {
			s, err := e.Section(egCtx, g, c, per)
			if err != nil {
				return err
			}
			out[i] = *s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Section lists up to per government actions tagged c and per citizen issues
// in category c within g.
func (e *Engine) Section(ctx context.Context, g domain.GeoQuery, c domain.Label, per int) (*domain.Section, error) {
	start := time.Now()
	defer func() { e.telemetry.RecordSection(time.Since(start)) }()

	sources, err := e.records.GovernmentActions(ctx, geo.Sources(g).Tagged(string(c)).Limit(per))
	if err != nil {
		return nil, fmt.Errorf("government actions for %s: %w", c, err)
	}
	issues, err := e.records.CitizenIssues(ctx, geo.Issues(g).InCategory(string(c)).Limit(per))
	if err != nil {
		return nil, fmt.Errorf("citizen issues for %s: %w", c, err)
	}

	s := &domain.Section{
		Category:          c,
		GovernmentActions: make([]domain.GovernmentAction, 0, len(sources)),
		CitizenIssues:     make([]domain.IssueSummary, 0, len(issues)),
	}
	for i := range sources {
		s.GovernmentActions = append(s.GovernmentActions, sources[i].ToAction())
	}
	for i := range issues {
		s.CitizenIssues = append(s.CitizenIssues, issues[i].ToSummary())
	}
	return s, nil
}
