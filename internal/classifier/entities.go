package classifier

import (
	"regexp"
	"sort"
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"

	"github.com/StreetLamp05/glassgov-be/internal/domain"
)

// streetPattern is a capitalised word followed by a street suffix ("Market St").
var streetPattern = regexp.MustCompile(`\b([A-Z][a-z]+ (?:St|Ave|Blvd|Rd|Road|Street|Avenue|Boulevard))\b`)

const capSeq = `(?:[A-Z][a-zA-Z'.-]+ )+`

var (
	orgPattern = regexp.MustCompile(`\b(` + capSeq +
		`(?:Department|Council|Board|Commission|Authority|Agency|Committee|Office|District|Association|Coalition|Union))\b`)
	facilityPattern = regexp.MustCompile(`\b(` + capSeq +
		`(?:Airport|Bridge|Library|Stadium|Station|Hospital|Center|Centre|Hall|Courthouse|School|Park))\b`)
	locationPattern = regexp.MustCompile(`\b(` + capSeq + `(?:River|Lake|Bay|Valley|Mountains?|Creek|Beach|Island))\b`)

	moneyPattern = regexp.MustCompile(`(?i)(\$\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:million|billion|thousand|[mbk])\b)?` +
		`|\b\d[\d,]*(?:\.\d+)?\s(?:dollars|million dollars|billion dollars)\b)`)
	timePattern = regexp.MustCompile(`(?i)\b(\d{1,2}(?::\d{2})?\s?(?:a\.m\.|p\.m\.|(?:am|pm)\b)` +
		`|(?:noon|midnight|tonight|this morning|this evening)\b)`)
	datePattern = regexp.MustCompile(`(?i)\b((?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|` +
		`sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?\s\d{1,2}(?:st|nd|rd|th)?(?:,?\s\d{4})?` +
		`|\d{1,2}/\d{1,2}/\d{2,4}|\d{4}-\d{2}-\d{2}` +
		`|(?:last|next|this)\s(?:week|month|year|monday|tuesday|wednesday|thursday|friday|saturday|sunday)` +
		`|yesterday|today|tomorrow|monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)
	cardinalPattern = regexp.MustCompile(`(?i)\b(\d[\d,]*(?:\.\d+)?|one|two|three|four|five|six|seven|eight|nine|ten|` +
		`eleven|twelve|twenty|thirty|forty|fifty|hundred|thousand|dozens?|hundreds|thousands)\b`)
)

// EntityExtractor finds named spans of the allowed kinds. It is safe for
// concurrent use.
type EntityExtractor struct {
	places  *ahocorasick.Matcher
	folded  []string // padded folded names; index = matcher dictionary index
	display map[string]string
}

// NewEntityExtractor builds the place gazetteer. extraPlaces extends the
// built-in US states and places.
func NewEntityExtractor(extraPlaces ...string) *EntityExtractor {
	e := &EntityExtractor{display: make(map[string]string)}
	names := make([]string, 0, len(usStates)+len(usPlaces)+len(extraPlaces))
	names = append(names, usStates...)
	names = append(names, usPlaces...)
	names = append(names, extraPlaces...)
	for _, name := range names {
		f := foldText(name)
		if strings.TrimSpace(f) == "" {
			continue
		}
		if _, dup := e.display[f]; dup {
			continue
		}
		e.display[f] = name
		e.folded = append(e.folded, f)
	}
	e.places = ahocorasick.NewStringMatcher(e.folded)
	return e
}

type span struct{ start, end int }

type spanSet []span

func (s spanSet) overlaps(start, end int) bool {
	for _, sp := range s {
		if start < sp.end && sp.start < end {
			return true
		}
	}
	return false
}

// Extract returns kind -> distinct spans, each list sorted. Kinds without a
// span are omitted; empty text yields an empty map.
func (e *EntityExtractor) Extract(text string) map[string][]string {
	out := make(map[string][]string)
	if strings.TrimSpace(text) == "" {
		return out
	}

	add := func(kind, value string) {
		value = strings.TrimSpace(value)
		if value == "" {
			return
		}
		out[kind] = append(out[kind], value)
	}

	for _, place := range e.matchPlaces(text) {
		add(domain.EntityGeoPolitical, place)
	}
	for _, m := range streetPattern.FindAllStringSubmatch(text, -1) {
		add(domain.EntityStreet, m[1])
	}
	for kind, rx := range map[string]*regexp.Regexp{
		domain.EntityOrganization: orgPattern,
		domain.EntityFacility:     facilityPattern,
		domain.EntityLocation:     locationPattern,
	} {
		for _, m := range rx.FindAllStringSubmatch(text, -1) {
			add(kind, m[1])
		}
	}

	// Numeric kinds claim their spans in order so "$4 million" is not also a cardinal.
	var claimed spanSet
	for _, nk := range []struct {
		kind string
		rx   *regexp.Regexp
	}{
		{domain.EntityMoney, moneyPattern},
		{domain.EntityTime, timePattern},
		{domain.EntityDate, datePattern},
		{domain.EntityCardinal, cardinalPattern},
	} {
		for _, loc := range nk.rx.FindAllStringIndex(text, -1) {
			if claimed.overlaps(loc[0], loc[1]) {
				continue
			}
			claimed = append(claimed, span{loc[0], loc[1]})
			add(nk.kind, text[loc[0]:loc[1]])
		}
	}

	for kind, values := range out {
		out[kind] = dedupeSorted(values)
	}
	return out
}

// matchPlaces returns gazetteer names present in text. Matching is accent and
// case folded, but the name must also appear capitalised in the accent-folded
// original, which keeps "buffalo wings" from becoming a place.
func (e *EntityExtractor) matchPlaces(text string) []string {
	if e.places == nil {
		return nil
	}
	plain := removeAccents(text)
	var found []string
	for _, idx := range e.places.Match([]byte(foldText(text))) {
		if idx < 0 || idx >= len(e.folded) {
			continue
		}
		name := e.display[e.folded[idx]]
		if strings.Contains(plain, removeAccents(name)) {
			found = append(found, name)
		}
	}
	return found
}

func dedupeSorted(values []string) []string {
	sort.Strings(values)
	out := values[:0]
	for i, v := range values {
		if i == 0 || v != values[i-1] {
			out = append(out, v)
		}
	}
	return out
}
