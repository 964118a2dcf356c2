package geo

import (
	"strconv"
	"strings"
)

// matchNothing is the predicate rendered for an empty geography.
const matchNothing = "FALSE"

// sqlBuilder numbers positional parameters.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

// like binds a case-insensitive containment pattern.
func (b *sqlBuilder) like(v string) string {
	return "'%' || " + b.arg(escapeLike(v)) + " || '%'"
}

func (b *sqlBuilder) limit(n int) string {
	if n <= 0 {
		return ""
	}
	return "\nLIMIT " + b.arg(n)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE metacharacters literal.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func orAll(clauses []string) string {
	if len(clauses) == 0 {
		return matchNothing
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}
