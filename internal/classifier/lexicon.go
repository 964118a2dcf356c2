package classifier

import (
	"regexp"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// Lexicon weights. A label matched by several rules keeps the highest.
const (
	weightFoodAccess = 0.85
	weightRoadSafety = 0.80
	weightCrime      = 0.85
	weightHousing    = 0.80
	weightZoning     = 0.75
	weightTransport  = 0.75
	weightBudget     = 0.75
	weightHealth     = 0.70
)

// Rule is a case-insensitive, word-bounded pattern scoring one label.
type Rule struct {
	Name    string
	Label   domain.Label
	Weight  float64
	Pattern *regexp.Regexp
}

func lexiconRule(name string, label domain.Label, weight float64, alternation string) Rule {
	return Rule{
		Name:    name,
		Label:   label,
		Weight:  weight,
		Pattern: regexp.MustCompile(`(?i)\b(` + alternation + `)\b`),
	}
}

// DefaultLexicon returns the built-in civic lexicon in evaluation order.
func DefaultLexicon() []Rule {
	return []Rule{
		lexiconRule("food_access_terms", domain.LabelFoodAccess, weightFoodAccess,
			`food deserts?|grocery|groceries|produce|supermarkets?|fresh food|food banks?`),
		lexiconRule("road_safety_terms", domain.LabelRoadSafety, weightRoadSafety,
			`potholes?|speeding|crosswalks?|traffic lights?|unsafe roads?|collisions?|accidents?`),
		lexiconRule("crime_terms", domain.LabelCrime, weightCrime,
			`homicides?|shootings?|robbery|robberies|assaults?|crimes?|car break[- ]?ins?|thefts?`),
		lexiconRule("housing_terms", domain.LabelHousing, weightHousing,
			`rent hikes?|evictions?|landlords?|affordable housing|shelters?|homeless encampments?`),
		lexiconRule("zoning_terms", domain.LabelZoning, weightZoning,
			`zoning|rezon(?:e|ing)|variance|land use|setback|upzone`),
		lexiconRule("transport_terms", domain.LabelTransport, weightTransport,
			`bus|buses|transit|metro|subway|trains?|stations?|bike lanes?|sidewalks?`),
		lexiconRule("budget_terms", domain.LabelBudget, weightBudget,
			`budget|appropriation|bond measure|levy|tax|funding cut|funding increase`),
		lexiconRule("health_terms", domain.LabelHealth, weightHealth,
			`clinics?|hospitals?|urgent care|public health|mental health|overdoses?`),
	}
}
