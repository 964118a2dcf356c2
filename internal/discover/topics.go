package discover

import (
	"context"
	"fmt"
	"strings"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
)

// Topic listing defaults.
const (
	DefaultTopicsCity  = "Los Angeles"
	DefaultTopicsLimit = 10
)

// Topics lists a city's government actions, newest meeting first. An empty
// category lists every action; an unknown one is domain.ErrUnknownLabel.
func (e *Engine) Topics(ctx context.Context, city, category string, limit int) ([]domain.GovernmentAction, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		city = DefaultTopicsCity
	}
	if limit <= 0 {
		limit = DefaultTopicsLimit
	}
	limit = min(limit, e.cfg.MaxPerCategory)

	q := geo.Sources(domain.GeoQuery{City: city}).Limit(limit)
	if strings.TrimSpace(category) != "" {
		l, err := domain.ParseLabel(category)
		if err != nil {
			return nil, err
		}
		q = q.Tagged(string(l))
	}

	sources, err := e.records.GovernmentActions(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("topics for %s: %w", city, err)
	}
	out := make([]domain.GovernmentAction, 0, len(sources))
	for i := range sources {
		out = append(out, sources[i].ToAction())
	}
	return out, nil
}
