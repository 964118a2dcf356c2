// Package classifier assigns civic-issue labels to free text by fusing a
// rule matcher with an optional semantic scorer, and extracts entities.
package classifier

import (
	"sort"
	"sync"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
	infralogger "github.com/StreetLamp05/glassgov-be/internal/infra/logger"
)

// RuleHit explains one rule that fired.
type RuleHit struct {
	Rule   string       `json:"rule"`
	Label  domain.Label `json:"label"`
	Weight float64      `json:"weight"`
	Match  string       `json:"match"`
}

// RuleMatcher scores text against the built-in lexicon plus any stored
// keyword rules. Stored rules can be swapped at runtime.
type RuleMatcher struct {
	lexicon []Rule

	mu   sync.RWMutex
	trie *keywordTrie

	logger infralogger.Logger
}

// NewRuleMatcher creates a matcher over lexicon. A nil lexicon uses DefaultLexicon.
func NewRuleMatcher(lexicon []Rule, logger infralogger.Logger) *RuleMatcher {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	if logger == nil {
		logger = infralogger.NewNop()
	}
	return &RuleMatcher{lexicon: lexicon, logger: logger}
}

// Scores returns the sparse label -> score map for text. A label matched by
// several rules keeps its highest weight. Unmatched text yields an empty map.
func (m *RuleMatcher) Scores(text string) map[domain.Label]float64 {
	best := make(map[domain.Label]float64)
	for _, hit := range m.Explain(text) {
		if hit.Weight > best[hit.Label] {
			best[hit.Label] = hit.Weight
		}
	}
	return best
}

// Explain lists every rule that fired, lexicon rules first in lexicon order,
// then stored rules by priority.
func (m *RuleMatcher) Explain(text string) []RuleHit {
	if text == "" {
		return nil
	}

	var hits []RuleHit
	for _, r := range m.lexicon {
		if match := r.Pattern.FindString(text); match != "" {
			hits = append(hits, RuleHit{Rule: r.Name, Label: r.Label, Weight: r.Weight, Match: match})
		}
	}

	m.mu.RLock()
	trie := m.trie
	m.mu.RUnlock()

	stored := trie.match(text)
	sort.SliceStable(stored, func(i, j int) bool { return stored[i].rule.priority > stored[j].rule.priority })
	seen := make(map[int]bool, len(stored))
	for _, h := range stored {
		if seen[h.rule.id] {
			continue
		}
		seen[h.rule.id] = true
		hits = append(hits, RuleHit{Rule: h.rule.name, Label: h.rule.label, Weight: h.rule.weight, Match: h.keyword})
	}
	return hits
}

// UpdateRules replaces the stored keyword rules. Invalid rules are skipped
// and reported in the returned error; the valid remainder is installed.
func (m *RuleMatcher) UpdateRules(rules []domain.ClassificationRule) error {
	trie, err := newKeywordTrie(rules)

	m.mu.Lock()
	m.trie = trie
	m.mu.Unlock()

	m.logger.Info("Stored rules loaded",
		infralogger.Int("rules", len(trie.rules)),
		infralogger.Int("keywords", len(trie.keywords)),
	)
	if err != nil {
		m.logger.Warn("Some stored rules were rejected", infralogger.Error(err))
	}
	return err
}

// StoredRuleCount is the number of active stored rules.
func (m *RuleMatcher) StoredRuleCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.trie == nil {
		return 0
	}
	return len(m.trie.rules)
}
