package classifier

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// ErrInvalidRule is returned for stored rules that cannot be compiled.
var ErrInvalidRule = errors.New("invalid classification rule")

// keywordRule is a validated stored rule.
type keywordRule struct {
	id       int
	name     string
	label    domain.Label
	weight   float64
	priority int
	keywords []string
}

// keywordTrie matches every stored keyword in one pass over the folded text.
type keywordTrie struct {
	matcher  *ahocorasick.Matcher
	keywords []string                  // padded, folded; index = matcher dictionary index
	owners   map[string][]*keywordRule // padded keyword -> rules using it
	rules    []*keywordRule
}

// ValidateRule checks a stored rule against the closed label set and weight range.
func ValidateRule(r *domain.ClassificationRule) error {
	if r == nil {
		return fmt.Errorf("%w: nil rule", ErrInvalidRule)
	}
	if _, err := domain.ParseLabel(r.Label); err != nil {
		return fmt.Errorf("%w: rule %q: %w", ErrInvalidRule, r.RuleName, err)
	}
	if r.Weight <= 0 || r.Weight > 1 {
		return fmt.Errorf("%w: rule %q: weight %.3f outside (0, 1]", ErrInvalidRule, r.RuleName, r.Weight)
	}
	for _, kw := range r.Keywords {
		if strings.TrimSpace(foldText(kw)) != "" {
			return nil
		}
	}
	return fmt.Errorf("%w: rule %q has no usable keywords", ErrInvalidRule, r.RuleName)
}

// newKeywordTrie builds the automaton from enabled rules. Invalid rules are
// returned in the joined error and left out; valid ones are still built.
func newKeywordTrie(rules []domain.ClassificationRule) (*keywordTrie, error) {
	t := &keywordTrie{owners: make(map[string][]*keywordRule)}

	var errs []error
	for i := range rules {
		r := &rules[i]
		if !r.Enabled {
			continue
		}
		if err := ValidateRule(r); err != nil {
			errs = append(errs, err)
			continue
		}
		label, _ := domain.ParseLabel(r.Label)
		kr := &keywordRule{id: r.ID, name: r.RuleName, label: label, weight: r.Weight, priority: r.Priority}
		for _, kw := range r.Keywords {
			folded := foldText(kw)
			if strings.TrimSpace(folded) == "" {
				continue
			}
			kr.keywords = append(kr.keywords, strings.TrimSpace(folded))
			if _, seen := t.owners[folded]; !seen {
				t.keywords = append(t.keywords, folded)
			}
			t.owners[folded] = append(t.owners[folded], kr)
		}
		t.rules = append(t.rules, kr)
	}

	sort.SliceStable(t.rules, func(i, j int) bool { return t.rules[i].priority > t.rules[j].priority })
	if len(t.keywords) > 0 {
		t.matcher = ahocorasick.NewStringMatcher(t.keywords)
	}
	return t, errors.Join(errs...)
}

// keywordHit is one matched keyword for one rule.
type keywordHit struct {
	rule    *keywordRule
	keyword string
}

// match returns each (rule, keyword) pair found in text.
func (t *keywordTrie) match(text string) []keywordHit {
	if t == nil || t.matcher == nil {
		return nil
	}
	var hits []keywordHit
	for _, idx := range t.matcher.Match([]byte(foldText(text))) {
		if idx < 0 || idx >= len(t.keywords) {
			continue
		}
		kw := t.keywords[idx]
		for _, r := range t.owners[kw] {
			hits = append(hits, keywordHit{rule: r, keyword: strings.TrimSpace(kw)})
		}
	}
	return hits
}
