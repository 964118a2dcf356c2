package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StreetLamp05/glassgov-be/internal/database"
	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

var ruleCols = []string{"id", "rule_name", "label", "keywords", "weight", "enabled", "priority", "created_at", "updated_at"}

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func TestRulesRepository_List(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRulesRepository(db)
	now := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM classification_rules WHERE enabled = TRUE ORDER BY priority DESC").
		WillReturnRows(sqlmock.NewRows(ruleCols).
			AddRow(1, "snap", "food_access", `{"SNAP benefits",WIC}`, 0.9, true, 10, now, now).
			AddRow(2, "adu", "zoning", `{ADU}`, 0.7, true, 5, now, now))

	rules, err := repo.List(context.Background(), true)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, []string{"SNAP benefits", "WIC"}, rules[0].Keywords)
	assert.Equal(t, "zoning", rules[1].Label)
	assert.InDelta(t, 0.7, rules[1].Weight, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRulesRepository_ListAll(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRulesRepository(db)

	mock.ExpectQuery(`FROM classification_rules ORDER BY priority DESC`).
		WillReturnRows(sqlmock.NewRows(ruleCols))

	rules, err := repo.List(context.Background(), false)
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRulesRepository_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRulesRepository(db)
	now := time.Now()

	mock.ExpectQuery("INSERT INTO classification_rules").
		WithArgs("snap", "food_access", sqlmock.AnyArg(), 0.9, true, 10).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(42, now, now))

	rule := &domain.ClassificationRule{
		RuleName: "snap", Label: "food_access", Keywords: []string{"snap"},
		Weight: 0.9, Enabled: true, Priority: 10,
	}
	require.NoError(t, repo.Create(context.Background(), rule))
	assert.Equal(t, 42, rule.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRulesRepository_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRulesRepository(db)

	mock.ExpectExec("DELETE FROM classification_rules").
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7)
	require.ErrorIs(t, err, database.ErrRuleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRulesRepository_SetEnabled(t *testing.T) {
	db, mock := newMock(t)
	repo := database.NewRulesRepository(db)

	mock.ExpectQuery("UPDATE classification_rules SET enabled").
		WithArgs(false, 3).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectQuery("UPDATE classification_rules SET enabled").
		WithArgs(true, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	require.NoError(t, repo.SetEnabled(context.Background(), 3, false))
	require.ErrorIs(t, repo.SetEnabled(context.Background(), 4, true), database.ErrRuleNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
