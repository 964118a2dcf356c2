package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
)

// RecordRepository reads government sources and citizen posts from Postgres.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository creates a new record repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

type sourceRow struct {
	ID                    string         `db:"id"`
	Title                 string         `db:"title"`
	Summary               string         `db:"summary"`
	URL                   string         `db:"url"`
	SourceType            string         `db:"source_type"`
	Tags                  pq.StringArray `db:"tags"`
	MeetingDate           sql.NullTime   `db:"meeting_datetime"`
	CreatedAt             time.Time      `db:"created_at"`
	JurisdictionID        string         `db:"jurisdiction_id"`
	JurisdictionLevel     string         `db:"jurisdiction_level"`
	JurisdictionName      string         `db:"jurisdiction_name"`
	JurisdictionStateName string         `db:"jurisdiction_state_name"`
}

func (r *sourceRow) toDomain() domain.SourceRecord {
	rec := domain.SourceRecord{
		ID:        r.ID,
		Title:     r.Title,
		Summary:   r.Summary,
		URL:       r.URL,
		Type:      domain.SourceType(r.SourceType),
		Tags:      []string(r.Tags),
		CreatedAt: r.CreatedAt,
		Jurisdiction: domain.Jurisdiction{
			ID:        r.JurisdictionID,
			Level:     domain.JurisdictionLevel(r.JurisdictionLevel),
			Name:      r.JurisdictionName,
			StateName: r.JurisdictionStateName,
		},
	}
	if r.MeetingDate.Valid {
		t := r.MeetingDate.Time
		rec.MeetingDate = &t
	}
	return rec
}

type issueRow struct {
	ID        string    `db:"id"`
	Title     string    `db:"title"`
	Body      string    `db:"body"`
	Category  string    `db:"category"`
	City      string    `db:"city"`
	County    string    `db:"county"`
	StateName string    `db:"state_name"`
	Score     int       `db:"score"`
	CreatedAt time.Time `db:"created_at"`
}

// GovernmentActions runs q against sources joined to their jurisdictions.
func (r *RecordRepository) GovernmentActions(ctx context.Context, q geo.SourceQuery) ([]domain.SourceRecord, error) {
	query, args := q.ToSQL()

	var rows []sourceRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query government actions: %w", err)
	}

	out := make([]domain.SourceRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].toDomain()
	}
	return out, nil
}

// CitizenIssues runs q against citizen posts.
func (r *RecordRepository) CitizenIssues(ctx context.Context, q geo.IssueQuery) ([]domain.CitizenIssue, error) {
	query, args := q.ToSQL()

	var rows []issueRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to query citizen issues: %w", err)
	}

	out := make([]domain.CitizenIssue, len(rows))
	for i, row := range rows {
		out[i] = domain.CitizenIssue(row)
	}
	return out, nil
}

// SourceTagCounts counts matching sources per tag.
func (r *RecordRepository) SourceTagCounts(ctx context.Context, q geo.SourceQuery) (map[string]int, error) {
	query, args := q.TagCountSQL()
	counts, err := r.countBy(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count source tags: %w", err)
	}
	return counts, nil
}

// IssueCategoryCounts counts matching posts per category.
func (r *RecordRepository) IssueCategoryCounts(ctx context.Context, q geo.IssueQuery) (map[string]int, error) {
	query, args := q.CategoryCountSQL()
	counts, err := r.countBy(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("failed to count issue categories: %w", err)
	}
	return counts, nil
}

func (r *RecordRepository) countBy(ctx context.Context, query string, args []any) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rows.Close()
	}()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			key   string
			count int
		)
		if err = rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		counts[key] += count
	}
	return counts, rows.Err()
}

// Ping checks connectivity for health reporting.
func (r *RecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
