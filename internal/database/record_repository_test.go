package database_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
	"github.com/StreetLamp05/glassgov-be/internal/geo"
)

var sourceCols = []string{
	"id", "title", "summary", "url", "source_type", "tags", "meeting_datetime", "created_at",
	"jurisdiction_id", "jurisdiction_level", "jurisdiction_name", "jurisdiction_state_name",
}

func TestRecordRepository_GovernmentActions(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRecordRepository(db)
	meeting := time.Date(2025, 4, 2, 18, 0, 0, 0, time.UTC)
	created := time.Date(2025, 3, 30, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM sources s\s+JOIN bodies b`).
		WithArgs("Los Angeles", "crime", 2).
		WillReturnRows(sqlmock.NewRows(sourceCols).
			AddRow("s-1", "Public safety motion", "", "https://example.org/1", "council_file", "{crime,housing}",
				meeting, created, "j-1", "city", "City of Los Angeles", "California").
			AddRow("s-2", "Patrol budget", "Adds patrols", "", "budget", "{crime}",
				nil, created, "j-1", "city", "City of Los Angeles", "California"))

	q := geo.Sources(domain.GeoQuery{City: "Los Angeles"}).Tagged("crime").Limit(2)
	got, err := repo.GovernmentActions(context.Background(), q)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, []string{"crime", "housing"}, got[0].Tags)
	require.NotNil(t, got[0].MeetingDate)
	assert.True(t, meeting.Equal(*got[0].MeetingDate))
	assert.Equal(t, domain.SourceCouncilFile, got[0].Type)
	assert.Equal(t, domain.LevelCity, got[0].Jurisdiction.Level)
	assert.Nil(t, got[1].MeetingDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CitizenIssues(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRecordRepository(db)
	created := time.Date(2025, 3, 30, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM citizen_posts\s+WHERE \(county ILIKE`).
		WithArgs("Kern County", "housing").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "body", "category", "city", "county", "state_name", "score", "created_at",
		}).AddRow("p-1", "Rent doubled", "", "housing", "Bakersfield", "Kern County", "California", 12, created))

	got, err := repo.CitizenIssues(context.Background(), geo.Issues(domain.GeoQuery{County: "Kern"}).InCategory("housing"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 12, got[0].Score)
	assert.Equal(t, "Kern County", got[0].County)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_Counts(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRecordRepository(db)
	g := domain.GeoQuery{StateName: "California"}

	mock.ExpectQuery(`GROUP BY t.tag`).
		WithArgs("California").
		WillReturnRows(sqlmock.NewRows([]string{"tag", "count"}).AddRow("crime", 4).AddRow("parks", 1))
	mock.ExpectQuery(`GROUP BY category`).
		WithArgs("California").
		WillReturnRows(sqlmock.NewRows([]string{"category", "count"}).AddRow("housing", 3))

	tags, err := repo.SourceTagCounts(context.Background(), geo.Sources(g))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"crime": 4, "parks": 1}, tags)

	cats, err := repo.IssueCategoryCounts(context.Background(), geo.Issues(g))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"housing": 3}, cats)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_QueryError(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRecordRepository(db)

	mock.ExpectQuery("FROM citizen_posts").WillReturnError(sql.ErrConnDone)

	_, err := repo.CitizenIssues(context.Background(), geo.Issues(domain.GeoQuery{City: "Austin"}))
	require.ErrorIs(t, err, sql.ErrConnDone)
}
