package semantic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
	"github.com/StreetLamp05/glassgov-be/internal/infra/retry"
)

// ModelHandle describes a loaded sidecar model.
type ModelHandle struct {
	BaseURL      string
	ModelVersion string
	// Labels are the candidate labels sent with every request.
	Labels   []string
	LoadedAt time.Time
}

// loadTimeout bounds a shared probe independently of any caller's deadline.
const loadTimeout = 30 * time.Second

// Loader resolves the ModelHandle once per process. Concurrent first callers
// share a single probe; a failed probe is retried on the next call. A caller
// giving up does not cancel the probe for the others.
type Loader struct {
	baseURL string
	client  *http.Client
	retry   retry.Config
	timeout time.Duration
	logger  infralogger.Logger

	group  singleflight.Group
	mu     sync.RWMutex
	handle *ModelHandle
}

// NewLoader creates a loader for the sidecar at baseURL.
func NewLoader(baseURL string, client *http.Client, retryCfg retry.Config, logger infralogger.Logger) *Loader {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &Loader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		retry:   retryCfg,
		timeout: loadTimeout,
		logger:  logger,
	}
}

// Load returns the cached handle, probing the sidecar on first use.
func (l *Loader) Load(ctx context.Context) (*ModelHandle, error) {
	l.mu.RLock()
	h := l.handle
	l.mu.RUnlock()
	if h != nil {
		return h, nil
	}

	ch := l.group.DoChan("model", func() (any, error) {
		l.mu.RLock()
		cached := l.handle
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}
		probeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.timeout)
		defer cancel()
		return l.probe(probeCtx)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ModelHandle), nil
	}
}

// Loaded reports whether a handle is cached.
func (l *Loader) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.handle != nil
}

func (l *Loader) probe(ctx context.Context) (*ModelHandle, error) {
	if l.baseURL == "" {
		return nil, fmt.Errorf("%w: no sidecar url", ErrUnavailable)
	}

	var health *healthResponse
	err := retry.Do(ctx, l.retry, func(ctx context.Context) error {
		var probeErr error
		health, probeErr = doHealth(ctx, l.client, l.baseURL)
		return probeErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	labels, err := verifyLabels(health.Labels)
	if err != nil {
		return nil, err
	}

	h := &ModelHandle{
		BaseURL:      l.baseURL,
		ModelVersion: health.ModelVersion,
		Labels:       labels,
		LoadedAt:     time.Now(),
	}
	l.mu.Lock()
	l.handle = h
	l.mu.Unlock()

	l.logger.Info("Semantic model loaded",
		infralogger.String("url", l.baseURL),
		infralogger.String("model_version", h.ModelVersion),
		infralogger.Int("labels", len(h.Labels)),
	)
	return h, nil
}

// verifyLabels intersects the sidecar's advertised labels with the closed set.
// A sidecar that advertises nothing accepts the full set.
func verifyLabels(advertised []string) ([]string, error) {
	all := domain.AllLabels()
	if len(advertised) == 0 {
		out := make([]string, len(all))
		for i, l := range all {
			out[i] = string(l)
		}
		return out, nil
	}

	supported := make(map[domain.Label]bool, len(advertised))
	for _, s := range advertised {
		if l, err := domain.ParseLabel(s); err == nil {
			supported[l] = true
		}
	}
	var out []string
	for _, l := range all {
		if supported[l] {
			out = append(out, string(l))
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: sidecar supports none of the labels", ErrUnavailable)
	}
	return out, nil
}
