package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// ErrRuleNotFound is returned when no rule has the requested id.
var ErrRuleNotFound = errors.New("rule not found")

const ruleColumns = `id, rule_name, label, keywords, weight, enabled, priority, created_at, updated_at`

// RulesRepository handles database operations for classification rules.
type RulesRepository struct {
	db *sqlx.DB
}

// NewRulesRepository creates a new rules repository.
func NewRulesRepository(db *sqlx.DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// Create inserts a new rule into the database.
func (r *RulesRepository) Create(ctx context.Context, rule *domain.ClassificationRule) error {
	query := `
		INSERT INTO classification_rules (rule_name, label, keywords, weight, enabled, priority)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		rule.RuleName,
		rule.Label,
		pq.Array(rule.Keywords),
		rule.Weight,
		rule.Enabled,
		rule.Priority,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

// List returns rules ordered by priority, optionally only enabled ones.
func (r *RulesRepository) List(ctx context.Context, enabledOnly bool) ([]domain.ClassificationRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM classification_rules`
	if enabledOnly {
		query += ` WHERE enabled = TRUE`
	}
	query += ` ORDER BY priority DESC, created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var rules []domain.ClassificationRule
	for rows.Next() {
		var rule domain.ClassificationRule
		if err = rows.Scan(
			&rule.ID,
			&rule.RuleName,
			&rule.Label,
			pq.Array(&rule.Keywords),
			&rule.Weight,
			&rule.Enabled,
			&rule.Priority,
			&rule.CreatedAt,
			&rule.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, rule)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rules: %w", err)
	}

	return rules, nil
}

// Delete removes a rule from the database.
func (r *RulesRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM classification_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}

	return nil
}

// SetEnabled toggles a rule.
func (r *RulesRepository) SetEnabled(ctx context.Context, id int, enabled bool) error {
	var updatedID int
	err := r.db.QueryRowContext(ctx,
		`UPDATE classification_rules SET enabled = $1, updated_at = NOW() WHERE id = $2 RETURNING id`,
		enabled, id,
	).Scan(&updatedID)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %d", ErrRuleNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}
	return nil
}
