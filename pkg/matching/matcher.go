// Package matching resolves free-text ingredient phrases against the
// canonical vocabulary: normalize, exact/alias lookup, then fuzzy fallback.
package matching

import (
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalize"
)

// Matcher produces match decisions against an already-built index. It never
// mutates state and never calls external services; given the same index it
// is a pure function of its input.
type Matcher struct {
	index *Index
}

// NewMatcher creates a matcher over the given index
func NewMatcher(index *Index) *Matcher {
	return &Matcher{index: index}
}

// Match resolves a raw phrase to a canonical item with a confidence score.
// Exact and alias hits score 1.0 and never fall through to fuzzy lookup; a
// key with no hit at or above the fuzzy threshold yields method "none" with
// confidence 0. Malformed input normalizes to an empty key and yields "none".
func (m *Matcher) Match(raw string) models.MatchDecision {
	key := normalize.Normalize(raw)
	decision := models.MatchDecision{
		RawText: raw,
		Key:     key,
		Method:  models.MatchMethodNone,
	}

	if key == "" {
		return decision
	}

	if item, isAlias := m.index.LookupExact(key); item != nil {
		decision.CanonicalItemID = &item.ID
		decision.ItemName = item.Name
		decision.Confidence = 1.0
		decision.Method = models.MatchMethodExact
		if isAlias {
			decision.Method = models.MatchMethodAlias
		}
		return decision
	}

	if item, score := m.index.LookupFuzzy(key); item != nil {
		decision.CanonicalItemID = &item.ID
		decision.ItemName = item.Name
		decision.Confidence = score
		decision.Method = models.MatchMethodFuzzy
	}

	return decision
}
