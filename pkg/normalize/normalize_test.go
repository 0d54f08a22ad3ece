package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases and trims",
			input:    "  Chicken Breast  ",
			expected: "chicken breast",
		},
		{
			name:     "strips quantity and unit",
			input:    "2 cups all-purpose flour, sifted",
			expected: "all purpose flour",
		},
		{
			name:     "strips unicode fraction",
			input:    "¼ cup packed brown sugar",
			expected: "brown sugar",
		},
		{
			name:     "strips diet modifier",
			input:    "low-fat vanilla yogurt",
			expected: "vanilla yogurt",
		},
		{
			name:     "strips spelled out diet modifier",
			input:    "fat free greek yogurt",
			expected: "greek yogurt",
		},
		{
			name:     "collapses apple cultivar",
			input:    "Granny Smith apple",
			expected: "apple",
		},
		{
			name:     "collapses single word cultivar",
			input:    "Fuji apple",
			expected: "apple",
		},
		{
			name:     "collapses cultivar alternatives",
			input:    "Gala or Fuji apple",
			expected: "apple",
		},
		{
			name:     "collapses potato cultivar",
			input:    "yukon gold potatoes",
			expected: "potato",
		},
		{
			name:     "leaves bare variety word alone",
			input:    "fuji",
			expected: "fuji",
		},
		{
			name:     "strips manner adverb with its verb",
			input:    "finely chopped yellow onion",
			expected: "yellow onion",
		},
		{
			name:     "strips state words",
			input:    "fresh basil leaves, chopped",
			expected: "basil leaves",
		},
		{
			name:     "strips container noun with of",
			input:    "2 cloves of garlic, minced",
			expected: "garlic",
		},
		{
			name:     "strips container noun without of",
			input:    "1 (15 oz) can black beans, drained",
			expected: "black beans",
		},
		{
			name:     "drops trailing alternative clause",
			input:    "butter or margarine",
			expected: "butter",
		},
		{
			name:     "drops alternative exposed by unit strip",
			input:    "butter or 2 tbsp margarine",
			expected: "butter",
		},
		{
			name:     "drops alternative exposed by parenthetical strip",
			input:    "butter or margarine (softened)",
			expected: "butter",
		},
		{
			name:     "drops alternative exposed by number strip",
			input:    "pasta or 2 cups rice",
			expected: "pasta",
		},
		{
			name:     "drops parenthetical",
			input:    "heavy cream (cold)",
			expected: "heavy cream",
		},
		{
			name:     "strips parser artifact prefix",
			input:    "s pancake mix",
			expected: "pancake mix",
		},
		{
			name:     "keeps words starting with s",
			input:    "salt",
			expected: "salt",
		},
		{
			name:     "strips descriptors",
			input:    "cherry tomatoes, halved, divided",
			expected: "cherry tomatoes",
		},
		{
			name:     "strips to taste",
			input:    "black pepper to taste",
			expected: "black pepper",
		},
		{
			name:     "empty after stripping",
			input:    "2 cups",
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "keeps ground because it distinguishes items",
			input:    "1 lb ground beef",
			expected: "ground beef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.input))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"2 cups all-purpose flour, sifted",
		"low-fat vanilla yogurt",
		"Gala or Fuji apple",
		"finely chopped yellow onion",
		"s pancake mix",
		"1 (15 oz) can black beans, drained",
		"butter or margarine",
		"butter or 2 tbsp margarine",
		"butter or margarine (softened)",
		"pasta or 2 cups rice",
		"¼ cup packed brown sugar",
		"kosher salt",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			once := Normalize(input)
			assert.Equal(t, once, Normalize(once))
		})
	}
}

func TestRules_NamedAndOrdered(t *testing.T) {
	assert.Equal(t, "lowercase_trim", Rules[0].Name)
	assert.Equal(t, "punctuation", Rules[len(Rules)-1].Name)

	seen := make(map[string]bool)
	for _, rule := range Rules {
		assert.NotEmpty(t, rule.Name)
		assert.NotNil(t, rule.Apply)
		assert.False(t, seen[rule.Name], "duplicate rule name %s", rule.Name)
		seen[rule.Name] = true
	}
}
