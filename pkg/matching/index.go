package matching

import (
	"sort"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/normalize"
)

// DefaultFuzzyThreshold is the minimum similarity for a fuzzy lookup hit
const DefaultFuzzyThreshold = 0.85

// containmentScore is the floor assigned when one key contains the other as
// a whole token run but the character similarity alone falls short
const containmentScore = 0.9

// Collision reports two or more active items claiming the same normalized
// key. Collisions are a content-quality defect surfaced to the caller as
// integrity warnings, never a runtime error; the first item (by name order)
// wins the key deterministically.
type Collision struct {
	Key   string
	Items []string
}

type indexEntry struct {
	item    *models.CanonicalItem
	isAlias bool
}

// Index is the in-memory vocabulary lookup structure, built once per
// resolution run from the full canonical item set. Names and every alias are
// indexed under their normalized keys.
type Index struct {
	entries   map[string]indexEntry
	keys      []string
	size      int
	threshold float64
	scorer    *Scorer
}

// NewIndex builds an index over the given items and returns it along with
// any key collisions found while loading.
func NewIndex(items []models.CanonicalItem, fuzzyThreshold float64) (*Index, []Collision) {
	if fuzzyThreshold <= 0 {
		fuzzyThreshold = DefaultFuzzyThreshold
	}

	sorted := make([]models.CanonicalItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	idx := &Index{
		entries:   make(map[string]indexEntry, len(sorted)),
		size:      len(sorted),
		threshold: fuzzyThreshold,
		scorer:    NewScorer(),
	}

	var collisions []Collision
	collided := make(map[string][]string)

	for i := range sorted {
		item := &sorted[i]
		idx.claim(item, normalize.Normalize(item.Name), false, collided)
		for _, alias := range item.Aliases {
			idx.claim(item, normalize.Normalize(alias), true, collided)
		}
	}

	collisionKeys := make([]string, 0, len(collided))
	for key := range collided {
		collisionKeys = append(collisionKeys, key)
	}
	sort.Strings(collisionKeys)
	for _, key := range collisionKeys {
		collisions = append(collisions, Collision{Key: key, Items: collided[key]})
	}

	sort.Strings(idx.keys)
	return idx, collisions
}

func (idx *Index) claim(item *models.CanonicalItem, key string, isAlias bool, collided map[string][]string) {
	if key == "" {
		return
	}
	if existing, ok := idx.entries[key]; ok {
		if existing.item.ID == item.ID {
			return
		}
		if len(collided[key]) == 0 {
			collided[key] = append(collided[key], existing.item.Name)
		}
		collided[key] = append(collided[key], item.Name)
		return
	}
	idx.entries[key] = indexEntry{item: item, isAlias: isAlias}
	idx.keys = append(idx.keys, key)
}

// LookupExact returns the item owning the key, consulting normalized names
// and aliases. isAlias reports whether the hit came through an alias.
func (idx *Index) LookupExact(key string) (item *models.CanonicalItem, isAlias bool) {
	entry, ok := idx.entries[key]
	if !ok {
		return nil, false
	}
	return entry.item, entry.isAlias
}

// LookupFuzzy returns the best near-miss for the key, or nil when nothing
// scores at or above the index's fuzzy threshold. A score tie (common when
// two candidates hit the containment floor) goes to the candidate closest to
// the key by edit distance, then to key order.
func (idx *Index) LookupFuzzy(key string) (*models.CanonicalItem, float64) {
	if key == "" {
		return nil, 0
	}

	var best *models.CanonicalItem
	var bestScore, bestEdit float64

	for _, candidate := range idx.keys {
		score := idx.scorer.JaroWinkler(key, candidate)
		if score < containmentScore && idx.scorer.TokenContainment(key, candidate) == 1.0 {
			score = containmentScore
		}
		edit := idx.scorer.Levenshtein(key, candidate)
		if score > bestScore || (score == bestScore && edit > bestEdit) {
			bestScore = score
			bestEdit = edit
			entry := idx.entries[candidate]
			best = entry.item
		}
	}

	if best == nil || bestScore < idx.threshold {
		return nil, 0
	}
	return best, bestScore
}

// Size returns the number of items the index was built from
func (idx *Index) Size() int {
	return idx.size
}
