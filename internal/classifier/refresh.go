package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// RuleSource lists stored keyword rules.
type RuleSource interface {
	List(ctx context.Context, enabledOnly bool) ([]domain.ClassificationRule, error)
}

// RuleRefresher keeps a RuleMatcher in step with a RuleSource.
type RuleRefresher struct {
	source   RuleSource
	matcher  *RuleMatcher
	interval time.Duration
	logger   infralogger.Logger
}

// NewRuleRefresher creates a refresher. interval <= 0 disables polling in Run.
func NewRuleRefresher(source RuleSource, matcher *RuleMatcher, interval time.Duration, logger infralogger.Logger) *RuleRefresher {
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &RuleRefresher{source: source, matcher: matcher, interval: interval, logger: logger}
}

// Reload installs the enabled stored rules. Rows rejected by validation are
// logged and skipped; only a failed listing is returned.
func (r *RuleRefresher) Reload(ctx context.Context) error {
	rules, err := r.source.List(ctx, true)
	if err != nil {
		return fmt.Errorf("list rules: %w", err)
	}
	if err = r.matcher.UpdateRules(rules); err != nil && !errors.Is(err, ErrInvalidRule) {
		return err
	}
	return nil
}

// Run reloads every interval until ctx is done.
func (r *RuleRefresher) Run(ctx context.Context) {
	if r.interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.Reload(ctx); err != nil {
				r.logger.Warn("Rule refresh failed", infralogger.Error(err))
			}
		}
	}
}
