// Package semantic provides zero-shot label scoring backed by an ML sidecar.
// Every failure degrades to an empty score map; callers never see an error.
package semantic

import (
	"context"
	"errors"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// ErrUnavailable is returned by the model loader when the sidecar cannot serve.
var ErrUnavailable = errors.New("semantic model unavailable")

// Scorer returns per-label probabilities in [0, 1] for text.
type Scorer interface {
	Scores(ctx context.Context, text string) map[domain.Label]float64
}

// ScoreCache stores score maps keyed by text.
type ScoreCache interface {
	Get(ctx context.Context, text string) (map[domain.Label]float64, bool)
	Set(ctx context.Context, text string, scores map[domain.Label]float64)
}

// Disabled is the scorer used when no sidecar is configured.
type Disabled struct{}

// Scores always returns an empty map.
func (Disabled) Scores(context.Context, string) map[domain.Label]float64 {
	return map[domain.Label]float64{}
}
