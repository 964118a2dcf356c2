package semantic

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/infra/breaker"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/telemetry"
)

// DefaultTimeout bounds one sidecar call.
const DefaultTimeout = 3 * time.Second

// SidecarConfig configures a Sidecar scorer.
type SidecarConfig struct {
	Timeout time.Duration
	Client  *http.Client
	Breaker *breaker.Breaker
	Cache   ScoreCache
}

// Sidecar scores text with the zero-shot model behind a Loader.
type Sidecar struct {
	loader    *Loader
	client    *http.Client
	timeout   time.Duration
	breaker   *breaker.Breaker
	cache     ScoreCache
	logger    infralogger.Logger
	telemetry *telemetry.Provider
}

// NewSidecar wires the scorer. A nil breaker gets default thresholds; a nil
// cache disables caching.
func NewSidecar(loader *Loader, cfg SidecarConfig, logger infralogger.Logger, tp *telemetry.Provider) *Sidecar {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	s := &Sidecar{
		loader:    loader,
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		breaker:   cfg.Breaker,
		cache:     cfg.Cache,
		logger:    logger,
		telemetry: tp,
	}
	if s.breaker == nil {
		s.breaker = breaker.New(breaker.Config{
			OnStateChange: func(from, to breaker.State) {
				logger.Warn("Semantic circuit state changed",
					infralogger.String("from", from.String()),
					infralogger.String("to", to.String()),
				)
			},
		})
	}
	return s
}

// Scores returns label probabilities, or an empty map on any failure.
func (s *Sidecar) Scores(ctx context.Context, text string) map[domain.Label]float64 {
	start := time.Now()

	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, text); ok {
			s.telemetry.RecordSemantic(telemetry.SemanticCached, time.Since(start))
			return cached
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var resp *classifyResponse
	err := s.breaker.Execute(func() error {
		handle, loadErr := s.loader.Load(callCtx)
		if loadErr != nil {
			return loadErr
		}
		var callErr error
		resp, callErr = doClassify(callCtx, s.client, handle.BaseURL, &classifyRequest{
			Text:       text,
			Labels:     handle.Labels,
			MultiLabel: true,
		})
		return callErr
	})
	if err != nil {
		outcome := classifyOutcome(callCtx, err)
		s.telemetry.RecordSemantic(outcome, time.Since(start))
		s.logger.Warn("Semantic scoring degraded",
			infralogger.String("outcome", outcome),
			infralogger.Error(err),
		)
		return map[domain.Label]float64{}
	}

	scores := s.decode(resp)
	s.telemetry.RecordSemantic(telemetry.SemanticOK, time.Since(start))
	if s.cache != nil {
		s.cache.Set(ctx, text, scores)
	}
	return scores
}

func classifyOutcome(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, breaker.ErrOpen):
		return telemetry.SemanticCircuitOpen
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return telemetry.SemanticTimeout
	default:
		return telemetry.SemanticError
	}
}

// decode pairs labels with scores, dropping unknown labels and clamping to [0, 1].
func (s *Sidecar) decode(resp *classifyResponse) map[domain.Label]float64 {
	out := make(map[domain.Label]float64, len(resp.Labels))
	n := min(len(resp.Labels), len(resp.Scores))
	for i := range n {
		l, err := domain.ParseLabel(resp.Labels[i])
		if err != nil {
			s.logger.Debug("Ignoring unknown label from sidecar", infralogger.String("label", resp.Labels[i]))
			continue
		}
		score := resp.Scores[i]
		if math.IsNaN(score) {
			continue
		}
		out[l] = math.Min(1, math.Max(0, score))
	}
	return out
}
