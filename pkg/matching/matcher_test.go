package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

func TestMatcher_Match(t *testing.T) {
	items := []models.CanonicalItem{
		makeItem("onion-id", "yellow onion", "onion", "onions"),
		makeItem("sugar-id", "granulated sugar", "sugar"),
		makeItem("tomato-id", "tomato"),
	}
	index, _ := NewIndex(items, 0)
	matcher := NewMatcher(index)

	t.Run("exact match after normalization", func(t *testing.T) {
		decision := matcher.Match("Finely chopped yellow onion")
		require.NotNil(t, decision.CanonicalItemID)
		assert.Equal(t, "onion-id", *decision.CanonicalItemID)
		assert.Equal(t, "yellow onion", decision.Key)
		assert.Equal(t, models.MatchMethodExact, decision.Method)
		assert.Equal(t, 1.0, decision.Confidence)
	})

	t.Run("alias match scores full confidence", func(t *testing.T) {
		decision := matcher.Match("2 cups sugar")
		require.NotNil(t, decision.CanonicalItemID)
		assert.Equal(t, "sugar-id", *decision.CanonicalItemID)
		assert.Equal(t, models.MatchMethodAlias, decision.Method)
		assert.Equal(t, 1.0, decision.Confidence)
	})

	t.Run("alias wins before fuzzy", func(t *testing.T) {
		decision := matcher.Match("onions")
		require.NotNil(t, decision.CanonicalItemID)
		assert.Equal(t, "onion-id", *decision.CanonicalItemID)
		assert.Equal(t, models.MatchMethodAlias, decision.Method)
		assert.Equal(t, 1.0, decision.Confidence)
	})

	t.Run("fuzzy fallback", func(t *testing.T) {
		decision := matcher.Match("1 tomatos")
		require.NotNil(t, decision.CanonicalItemID)
		assert.Equal(t, "tomato-id", *decision.CanonicalItemID)
		assert.Equal(t, models.MatchMethodFuzzy, decision.Method)
		assert.GreaterOrEqual(t, decision.Confidence, DefaultFuzzyThreshold)
		assert.Less(t, decision.Confidence, 1.0)
	})

	t.Run("no match", func(t *testing.T) {
		decision := matcher.Match("dragonfruit")
		assert.Nil(t, decision.CanonicalItemID)
		assert.Equal(t, models.MatchMethodNone, decision.Method)
		assert.Equal(t, 0.0, decision.Confidence)
	})

	t.Run("input that normalizes to empty", func(t *testing.T) {
		decision := matcher.Match("2 cups")
		assert.Nil(t, decision.CanonicalItemID)
		assert.Equal(t, "", decision.Key)
		assert.Equal(t, models.MatchMethodNone, decision.Method)
		assert.Equal(t, 0.0, decision.Confidence)
	})

	t.Run("raw text preserved on the decision", func(t *testing.T) {
		decision := matcher.Match("  Tomato  ")
		assert.Equal(t, "  Tomato  ", decision.RawText)
		assert.Equal(t, "tomato", decision.Key)
	})
}
