package geo

import (
	"slices"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

const sourceColumns = `s.id, s.title, COALESCE(s.summary, '') AS summary, COALESCE(s.url, '') AS url,
	COALESCE(s.source_type::text, '') AS source_type, COALESCE(s.tags, '{}') AS tags,
	s.meeting_datetime, s.created_at,
	j.id AS jurisdiction_id, j.level::text AS jurisdiction_level, j.name AS jurisdiction_name,
	COALESCE(j.state_name, '') AS jurisdiction_state_name`

const sourceJoins = `FROM sources s
	JOIN bodies b ON b.id = s.body_id
	JOIN jurisdictions j ON j.id = b.jurisdiction_id`

// SourceQuery selects government sources whose owning jurisdiction lies in
// the geography.
type SourceQuery struct {
	geo   domain.GeoQuery
	tag   string
	limit int
}

// Sources starts a source query for g.
func Sources(g domain.GeoQuery) SourceQuery {
	return SourceQuery{geo: normalize(g)}
}

// Tagged keeps sources whose tags contain tag.
func (q SourceQuery) Tagged(tag string) SourceQuery {
	q.tag = tag
	return q
}

// Limit caps the result size. n <= 0 removes the cap.
func (q SourceQuery) Limit(n int) SourceQuery {
	q.limit = max(n, 0)
	return q
}

// Geo returns the normalised geography.
func (q SourceQuery) Geo() domain.GeoQuery { return q.geo }

// Empty reports whether the query can match nothing.
func (q SourceQuery) Empty() bool { return q.geo.IsEmpty() }

// Match evaluates the query's predicates against v.
func (q SourceQuery) Match(v SourceView) bool {
	if q.Empty() || !q.matchGeo(v.Owner()) {
		return false
	}
	return q.tag == "" || slices.Contains(v.RecordTags(), q.tag)
}

func (q SourceQuery) matchGeo(j domain.Jurisdiction) bool {
	switch j.Level {
	case domain.LevelCity:
		return containsFold(j.Name, q.geo.City)
	case domain.LevelCounty:
		return containsFold(j.Name, q.geo.County)
	case domain.LevelState:
		return containsFold(j.Name, q.geo.StateName) || containsFold(j.StateName, q.geo.StateName)
	default:
		return false
	}
}

// where renders the geography and tag predicates.
func (q SourceQuery) where(b *sqlBuilder) string {
	var clauses []string
	if q.geo.City != "" {
		clauses = append(clauses, "(j.level = 'city' AND j.name ILIKE "+b.like(q.geo.City)+")")
	}
	if q.geo.County != "" {
		clauses = append(clauses, "(j.level = 'county' AND j.name ILIKE "+b.like(q.geo.County)+")")
	}
	if q.geo.StateName != "" {
		p := b.like(q.geo.StateName)
		clauses = append(clauses, "(j.level = 'state' AND (j.name ILIKE "+p+" OR j.state_name ILIKE "+p+"))")
	}
	where := orAll(clauses)
	if q.tag != "" {
		where += " AND " + b.arg(q.tag) + " = ANY(s.tags)"
	}
	return where
}

// ToSQL renders the query for Postgres, ordered by meeting date (newest
// first, undated last) then creation time.
func (q SourceQuery) ToSQL() (string, []any) {
	b := &sqlBuilder{}
	sql := "SELECT " + sourceColumns + "\n" + sourceJoins +
		"\nWHERE " + q.where(b) +
		"\nORDER BY s.meeting_datetime DESC NULLS LAST, s.created_at DESC"
	sql += b.limit(q.limit)
	return sql, b.args
}

// TagCountSQL renders a per-tag count of distinct matching sources. The tag
// refinement and limit are ignored.
func (q SourceQuery) TagCountSQL() (string, []any) {
	b := &sqlBuilder{}
	q.tag = ""
	sql := "SELECT t.tag, COUNT(DISTINCT s.id) AS count\n" + sourceJoins +
		"\n\tCROSS JOIN LATERAL unnest(s.tags) AS t(tag)" +
		"\nWHERE " + q.where(b) +
		"\nGROUP BY t.tag"
	return sql, b.args
}

// SelectSources filters records with q, orders them and applies the limit.
func SelectSources[V SourceView](q SourceQuery, records []V) []V {
	var out []V
	for _, r := range records {
		if q.Match(r) {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, compareSources[V])
	if q.limit > 0 && len(out) > q.limit {
		out = out[:q.limit]
	}
	return out
}

func compareSources[V SourceView](a, b V) int {
	am, bm := a.Meeting(), b.Meeting()
	switch {
	case am != nil && bm == nil:
		return -1
	case am == nil && bm != nil:
		return 1
	case am != nil && bm != nil && !am.Equal(*bm):
		return bm.Compare(*am)
	}
	return b.Created().Compare(a.Created())
}

// CountSourceTags counts, per distinct tag, the records matching q.
func CountSourceTags[V SourceView](q SourceQuery, records []V) map[string]int {
	q.tag = ""
	counts := make(map[string]int)
	for _, r := range records {
		if !q.Match(r) {
			continue
		}
		seen := make(map[string]bool)
		for _, t := range r.RecordTags() {
			if !seen[t] {
				seen[t] = true
				counts[t]++
			}
		}
	}
	return counts
}
