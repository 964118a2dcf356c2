package domain

// ScoredLabel pairs a label with a confidence in [0, 1].
type ScoredLabel struct {
	Label Label   `json:"label"`
	Score float64 `json:"score"`
}

// Entity kinds produced by the entity extractor.
const (
	EntityLocation     = "LOC"
	EntityGeoPolitical = "GPE"
	EntityFacility     = "FAC"
	EntityOrganization = "ORG"
	EntityDate         = "DATE"
	EntityTime         = "TIME"
	EntityMoney        = "MONEY"
	EntityCardinal     = "CARDINAL"
	EntityStreet       = "STREET"
)

// ClassificationResult is the outcome of one analyze call. Ranked is never
// empty and Confidence equals Ranked[0].Score.
type ClassificationResult struct {
	PrimaryLabel Label                `json:"primary_category"`
	Ranked       []ScoredLabel        `json:"categories"`
	Confidence   float64              `json:"confidence"`
	Tags         []string             `json:"tags"`
	Entities     map[string][]string  `json:"entities"`
	Debug        *ClassificationDebug `json:"debug,omitempty"`
}

// ClassificationDebug exposes the raw per-source scores.
type ClassificationDebug struct {
	RuleScores     map[Label]float64 `json:"rule_scores"`
	SemanticScores map[Label]float64 `json:"semantic_scores"`
}

// Labels returns the ranked labels in order.
func (r *ClassificationResult) Labels() []Label {
	out := make([]Label, len(r.Ranked))
	for i, s := range r.Ranked {
		out[i] = s.Label
	}
	return out
}
