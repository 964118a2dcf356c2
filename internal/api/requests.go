package api

import (
	"errors"

	"github.com/StreetLamp05/glassgov-be/internal/classifier"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

var (
	errThresholdRange = errors.New("threshold must be within [0, 1]")
	errTopKRange      = errors.New("top_k must be at least 1")
)

// AnalyzeRequest is the body of POST /api/v1/analyze. Unset options fall
// back to the service defaults.
type AnalyzeRequest struct {
	Text      string   `json:"text"`
	Threshold *float64 `json:"threshold"`
	TopK      *int     `json:"top_k"`
	Debug     *bool    `json:"debug"`
}

func (r *AnalyzeRequest) options(defaults classifier.Options) (classifier.Options, error) {
	opts := defaults
	if r.Threshold != nil {
		if *r.Threshold < 0 || *r.Threshold > 1 {
			return opts, errThresholdRange
		}
		opts.Threshold = *r.Threshold
	}
	if r.TopK != nil {
		if *r.TopK < 1 {
			return opts, errTopKRange
		}
		opts.TopK = *r.TopK
	}
	if r.Debug != nil {
		opts.Debug = *r.Debug
	}
	return opts, nil
}

// AnalyzeResponse is the classification result plus, in debug mode, the
// rules that fired.
type AnalyzeResponse struct {
	*domain.ClassificationResult
	RuleHits []classifier.RuleHit `json:"rule_hits,omitempty"`
}

// DiscoverRequest is the body of POST /api/v1/discover.
type DiscoverRequest struct {
	Geo        domain.GeoQuery `json:"geo"`
	Message    string          `json:"message"`
	Categories []string        `json:"categories"`
	Limits     struct {
		PerCategory int `json:"per_category"`
	} `json:"limits"`
}

// RulesListResponse represents a list of rules with metadata.
type RulesListResponse struct {
	Rules []domain.ClassificationRule `json:"rules"`
	Total int                         `json:"total"`
}

// CreateRuleRequest represents a request to create a rule.
type CreateRuleRequest struct {
	RuleName string   `json:"rule_name" binding:"required"`
	Label    string   `json:"label"     binding:"required"`
	Keywords []string `json:"keywords"  binding:"required,min=1"`
	Weight   float64  `json:"weight"    binding:"required"`
	Enabled  *bool    `json:"enabled"`
	Priority int      `json:"priority"`
}

func (r *CreateRuleRequest) toRule() domain.ClassificationRule {
	enabled := true
	if r.Enabled != nil {
		enabled = *r.Enabled
	}
	return domain.ClassificationRule{
		RuleName: r.RuleName,
		Label:    r.Label,
		Keywords: r.Keywords,
		Weight:   r.Weight,
		Enabled:  enabled,
		Priority: r.Priority,
	}
}

// UpdateRuleRequest toggles a rule.
type UpdateRuleRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}
