package domain

import "time"

// ClassificationRule is a stored keyword rule. A hit on any keyword scores
// Label at Weight.
type ClassificationRule struct {
	ID        int       `db:"id"         json:"id"`
	RuleName  string    `db:"rule_name"  json:"rule_name"`
	Label     string    `db:"label"      json:"label"`
	Keywords  []string  `db:"keywords"   json:"keywords"`
	Weight    float64   `db:"weight"     json:"weight"`
	Enabled   bool      `db:"enabled"    json:"enabled"`
	Priority  int       `db:"priority"   json:"priority"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
