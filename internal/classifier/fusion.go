package classifier

import (
	"context"
	"math"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// Selection defaults.
const (
	DefaultThreshold = 0.50
	DefaultTopK      = 3
	scoreDecimals    = 1000.0
)

// Fallback kinds reported to telemetry.
const (
	fallbackTopK    = "top_k"
	fallbackDefault = "default"
)

// SemanticScorer returns per-label probabilities for text. Implementations
// must return an empty map, never an error, when disabled or failing.
type SemanticScorer interface {
	Scores(ctx context.Context, text string) map[domain.Label]float64
}

// Options tune label selection.
type Options struct {
	Threshold float64
	TopK      int
	Debug     bool
}

// DefaultOptions is threshold 0.50, top_k 3, no debug output.
func DefaultOptions() Options {
	return Options{Threshold: DefaultThreshold, TopK: DefaultTopK}
}

// Engine fuses rule and semantic scores into a ClassificationResult.
type Engine struct {
	rules     *RuleMatcher
	semantic  SemanticScorer
	entities  *EntityExtractor
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewEngine wires the classification pipeline. A nil semantic scorer behaves
// as disabled; a nil extractor yields no entities.
func NewEngine(
	rules *RuleMatcher,
	semantic SemanticScorer,
	entities *EntityExtractor,
	logger infralogger.Logger,
	tp *telemetry.Provider,
) *Engine {
	if rules == nil {
		rules = NewRuleMatcher(nil, logger)
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &Engine{rules: rules, semantic: semantic, entities: entities, logger: logger, telemetry: tp}
}

// Rules exposes the matcher for hot reloads.
func (e *Engine) Rules() *RuleMatcher { return e.rules }

// Analyze classifies text. It never fails: blank text, a disabled semantic
// scorer and semantic failures all still produce a non-empty ranking.
func (e *Engine) Analyze(ctx context.Context, text string, opts Options) *domain.ClassificationResult {
	start := time.Now()
	ctx, span := e.telemetry.StartSpan(ctx, "classifier.analyze",
		attribute.Int("text_length", len(text)),
		attribute.Float64("threshold", opts.Threshold),
		attribute.Int("top_k", opts.TopK),
	)
	defer span.End()

	if opts.TopK < 1 {
		opts.TopK = DefaultTopK
	}

	text = strings.TrimSpace(text)
	if text == "" {
		e.telemetry.RecordAnalyze(time.Since(start), nil, fallbackDefault)
		return defaultResult(opts.Debug)
	}

	rmap := e.rules.Scores(text)
	zmap := e.semanticScores(ctx, text)

	ranked := Rank(Fuse(rmap, zmap))
	selected, fallback := Select(ranked, opts.Threshold, opts.TopK)
	if len(selected) == 0 {
		selected = []domain.ScoredLabel{{Label: domain.DefaultLabel, Score: domain.DefaultLabelScore}}
		fallback = fallbackDefault
	}

	for i := range selected {
		selected[i].Score = roundScore(selected[i].Score)
	}

	result := &domain.ClassificationResult{
		PrimaryLabel: selected[0].Label,
		Ranked:       selected,
		Confidence:   selected[0].Score,
		Tags:         tagsFor(selected, rmap),
		Entities:     e.extractEntities(text),
	}
	if opts.Debug {
		result.Debug = &domain.ClassificationDebug{RuleScores: rmap, SemanticScores: zmap}
	}

	ruleLabels := make([]string, 0, len(rmap))
	for l := range rmap {
		ruleLabels = append(ruleLabels, string(l))
	}
	e.telemetry.RecordAnalyze(time.Since(start), ruleLabels, fallback)
	span.SetAttributes(attribute.String("primary_label", string(result.PrimaryLabel)))
	return result
}

func (e *Engine) semanticScores(ctx context.Context, text string) map[domain.Label]float64 {
	if e.semantic == nil {
		return map[domain.Label]float64{}
	}
	raw := e.semantic.Scores(ctx, text)
	out := make(map[domain.Label]float64, len(raw))
	for l, s := range raw {
		if !l.Valid() {
			e.logger.Debug("Ignoring semantic score for unknown label", infralogger.String("label", string(l)))
			continue
		}
		out[l] = s
	}
	return out
}

func (e *Engine) extractEntities(text string) map[string][]string {
	if e.entities == nil {
		return map[string][]string{}
	}
	return e.entities.Extract(text)
}

// Fuse takes the per-label maximum of the two maps over the full label set.
// Labels missing from a map count as 0; labels outside the set are ignored.
func Fuse(rmap, zmap map[domain.Label]float64) map[domain.Label]float64 {
	fused := make(map[domain.Label]float64, len(domain.AllLabels()))
	for _, l := range domain.AllLabels() {
		fused[l] = math.Max(rmap[l], zmap[l])
	}
	return fused
}

// Rank sorts fused scores descending, ties in label declaration order.
func Rank(fused map[domain.Label]float64) []domain.ScoredLabel {
	ranked := make([]domain.ScoredLabel, 0, len(fused))
	for _, l := range domain.AllLabels() {
		if s, ok := fused[l]; ok {
			ranked = append(ranked, domain.ScoredLabel{Label: l, Score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	return ranked
}

// Select keeps every label scoring at least threshold. When none does it falls
// back to the first topK labels and reports "top_k".
func Select(ranked []domain.ScoredLabel, threshold float64, topK int) ([]domain.ScoredLabel, string) {
	var picked []domain.ScoredLabel
	for _, s := range ranked {
		if s.Score >= threshold {
			picked = append(picked, s)
		}
	}
	if len(picked) > 0 {
		return picked, ""
	}
	if topK > len(ranked) {
		topK = len(ranked)
	}
	return append([]domain.ScoredLabel(nil), ranked[:topK]...), fallbackTopK
}

// tagsFor is the sorted union of selected labels and every rule hit.
func tagsFor(selected []domain.ScoredLabel, rmap map[domain.Label]float64) []string {
	set := make(map[string]struct{}, len(selected)+len(rmap))
	for _, s := range selected {
		set[string(s.Label)] = struct{}{}
	}
	for l, w := range rmap {
		if w > 0 {
			set[string(l)] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

func defaultResult(debug bool) *domain.ClassificationResult {
	r := &domain.ClassificationResult{
		PrimaryLabel: domain.DefaultLabel,
		Ranked:       []domain.ScoredLabel{{Label: domain.DefaultLabel, Score: domain.DefaultLabelScore}},
		Confidence:   domain.DefaultLabelScore,
		Tags:         []string{string(domain.DefaultLabel)},
		Entities:     map[string][]string{},
	}
	if debug {
		r.Debug = &domain.ClassificationDebug{
			RuleScores:     map[domain.Label]float64{},
			SemanticScores: map[domain.Label]float64{},
		}
	}
	return r
}

func roundScore(s float64) float64 {
	return math.Round(s*scoreDecimals) / scoreDecimals
}
