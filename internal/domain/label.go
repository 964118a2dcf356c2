// Package domain holds the civic-issue vocabulary and the record shapes shared
// by classification and discovery.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Label is a civic-issue category. The set is closed.
type Label string

// Labels in declaration order. This order is the tie-break for every ranking.
const (
	LabelFoodAccess Label = "food_access"
	LabelRoadSafety Label = "road_safety"
	LabelCrime      Label = "crime"
	LabelHousing    Label = "housing"
	LabelZoning     Label = "zoning"
	LabelTransport  Label = "transport"
	LabelBudget     Label = "budget"
	LabelHealth     Label = "health"
)

// ErrUnknownLabel is returned for strings outside the closed label set.
var ErrUnknownLabel = errors.New("unknown label")

var allLabels = [...]Label{
	LabelFoodAccess,
	LabelRoadSafety,
	LabelCrime,
	LabelHousing,
	LabelZoning,
	LabelTransport,
	LabelBudget,
	LabelHealth,
}

var labelIndex = func() map[Label]int {
	m := make(map[Label]int, len(allLabels))
	for i, l := range allLabels {
		m[l] = i
	}
	return m
}()

// AllLabels returns a fresh copy of the label set in declaration order.
func AllLabels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels[:])
	return out
}

// ParseLabel accepts an exact label identifier (surrounding space and case are
// ignored). Anything else is ErrUnknownLabel.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := labelIndex[l]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownLabel, s)
	}
	return l, nil
}

// Valid reports whether l belongs to the closed set.
func (l Label) Valid() bool {
	_, ok := labelIndex[l]
	return ok
}

// Ordinal is the declaration position of l, or -1 for invalid labels.
func (l Label) Ordinal() int {
	if i, ok := labelIndex[l]; ok {
		return i
	}
	return -1
}

func (l Label) String() string { return string(l) }

// DefaultLabel backs the degenerate case where no label could be selected.
const (
	DefaultLabel      = LabelHealth
	DefaultLabelScore = 0.5
)

// FallbackCategories is used by discovery when neither classification nor
// geography yields a category.
func FallbackCategories() []Label {
	return []Label{LabelCrime, LabelHousing, LabelTransport}
}
