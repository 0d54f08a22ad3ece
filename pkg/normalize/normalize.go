// Package normalize turns free-text ingredient phrases into canonical lookup
// keys. The pipeline is an ordered list of named rules; order is a contract,
// not an accident (later rules assume earlier ones ran, and a removal can
// expose a new match for a later rule).
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// Rule is one named step of the normalization pipeline
type Rule struct {
	Name  string
	Apply func(string) string
}

// Rules is the pipeline, applied first to last. Every rule is pure; Normalize
// repeats the pipeline until it stops changing the key, so the end result is
// idempotent.
var Rules = []Rule{
	{"lowercase_trim", lowercaseTrim},
	{"parser_artifact", stripParserArtifact},
	{"diet_modifiers", stripDietModifiers},
	{"cultivars", collapseCultivars},
	{"manner_adverbs", stripMannerAdverbs},
	{"state_words", stripStateWords},
	{"container_nouns", stripContainerNouns},
	{"descriptors", stripDescriptors},
	{"or_alternative", stripOrAlternative},
	{"parentheticals", stripParentheticals},
	{"units", stripUnits},
	{"numbers", stripNumbers},
	{"punctuation", collapsePunctuation},
}

// Normalize runs the pipeline to a fixpoint. A single pass can leave text a
// later removal exposes to an earlier rule ("butter or 2 tbsp margarine"
// keeps its alternative clause until the number is gone), so passes repeat
// until the key stops changing. Every rule only removes or folds text, so
// the loop terminates. Total over all inputs; the worst case is an empty
// string, which callers treat as "no usable signal".
func Normalize(raw string) string {
	s := applyRules(raw)
	for prev := ""; s != prev; {
		prev = s
		s = applyRules(prev)
	}
	return s
}

func applyRules(s string) string {
	for _, rule := range Rules {
		s = rule.Apply(s)
		s = collapseSpaces(s)
	}
	return s
}

var (
	spaceRe          = regexp.MustCompile(`\s+`)
	parserArtifactRe = regexp.MustCompile(`^s\s+`)
	dietModifierRe   = wordListRe(dietModifiers)
	mannerAdverbRe   = regexp.MustCompile(`\b(?:` + alternation(mannerAdverbs) + `)\s+(` + alternation(prepVerbs) + `)\b`)
	stateWordRe      = wordListRe(stateWords)
	containerNounRe  = regexp.MustCompile(`\b(?:` + alternation(containerNouns) + `)(?:\s+of)?\b`)
	descriptorRe     = wordListRe(descriptors)
	orAlternativeRe  = regexp.MustCompile(`\s+or\s+[a-z][a-z ]*$`)
	parentheticalRe  = regexp.MustCompile(`\([^)]*\)`)
	unitRe           = wordListRe(unitWords)
	numberRe         = regexp.MustCompile(`\b[0-9]+(?:[./][0-9]+)?\b`)
	fractionRe       = regexp.MustCompile(`[½⅓⅔¼¾⅛⅜⅝⅞]`)
	punctuationRe    = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	cultivarRes      = buildCultivarRes()
)

func lowercaseTrim(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

// stripParserArtifact drops the stray "s " prefix an upstream parser defect
// leaves on some phrases ("s pancake mix" -> "pancake mix").
func stripParserArtifact(s string) string {
	return parserArtifactRe.ReplaceAllString(s, "")
}

func stripDietModifiers(s string) string {
	return dietModifierRe.ReplaceAllString(s, " ")
}

func collapseCultivars(s string) string {
	for _, cr := range cultivarRes {
		s = cr.re.ReplaceAllString(s, cr.base)
	}
	return s
}

// stripMannerAdverbs removes an adverb only when it qualifies a preparation
// verb; the verb itself survives until the state_words rule.
func stripMannerAdverbs(s string) string {
	return mannerAdverbRe.ReplaceAllString(s, "$1")
}

func stripStateWords(s string) string {
	return stateWordRe.ReplaceAllString(s, " ")
}

func stripContainerNouns(s string) string {
	return containerNounRe.ReplaceAllString(s, " ")
}

func stripDescriptors(s string) string {
	return descriptorRe.ReplaceAllString(s, " ")
}

// stripOrAlternative drops a trailing "or <alternative>" clause, keeping the
// primary ingredient ("butter or margarine" -> "butter").
func stripOrAlternative(s string) string {
	return orAlternativeRe.ReplaceAllString(s, "")
}

func stripParentheticals(s string) string {
	return parentheticalRe.ReplaceAllString(s, " ")
}

func stripUnits(s string) string {
	return unitRe.ReplaceAllString(s, " ")
}

func stripNumbers(s string) string {
	s = numberRe.ReplaceAllString(s, " ")
	return fractionRe.ReplaceAllString(s, " ")
}

func collapsePunctuation(s string) string {
	return punctuationRe.ReplaceAllString(s, " ")
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// alternation builds a regex alternation from a word list, longest entries
// first so multi-word entries win over their prefixes.
func alternation(words []string) string {
	sorted := make([]string, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	escaped := make([]string, len(sorted))
	for i, w := range sorted {
		escaped[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(escaped, "|")
}

func wordListRe(words []string) *regexp.Regexp {
	return regexp.MustCompile(`\b(?:` + alternation(words) + `)\b`)
}

type cultivarRe struct {
	base string
	re   *regexp.Regexp
}

// buildCultivarRes compiles one pattern per base noun matching a run of
// variety words (optionally joined by commas or "or") followed by the base:
// "gala or fuji apple" -> "apple".
func buildCultivarRes() []cultivarRe {
	bases := make([]string, 0, len(cultivars))
	for base := range cultivars {
		bases = append(bases, base)
	}
	sort.Strings(bases)

	res := make([]cultivarRe, 0, len(bases))
	for _, base := range bases {
		varieties := alternation(cultivars[base])
		pattern := `\b(?:(?:` + varieties + `)(?:,|\s+or)?\s+)+` + regexp.QuoteMeta(base) + `(?:e?s)?\b`
		res = append(res, cultivarRe{base: base, re: regexp.MustCompile(pattern)})
	}
	return res
}
