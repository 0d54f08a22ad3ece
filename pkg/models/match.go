package models

// MatchMethod identifies how a canonical item was resolved for a raw phrase
type MatchMethod string

const (
	// MatchMethodExact means the normalized key equaled an item's normalized name
	MatchMethodExact MatchMethod = "exact"
	// MatchMethodAlias means the normalized key equaled one of an item's aliases
	MatchMethodAlias MatchMethod = "alias"
	// MatchMethodFuzzy means the key scored above the fuzzy threshold against an item
	MatchMethodFuzzy MatchMethod = "fuzzy"
	// MatchMethodNone means no item matched
	MatchMethodNone MatchMethod = "none"
)

// MatchDecision is the outcome of resolving one raw ingredient phrase.
// Produced fresh per run, never persisted as its own entity.
type MatchDecision struct {
	RawText         string      `json:"raw_text"`
	Key             string      `json:"key"`
	CanonicalItemID *string     `json:"canonical_item_id,omitempty"`
	ItemName        string      `json:"item_name,omitempty"`
	Confidence      float64     `json:"confidence"`
	Method          MatchMethod `json:"method"`
}

// ResolveStats tracks a batch resolution run over one reference table.
// AvgConfidence is the mean over matched rows only. NextOffset is the safe
// continuation point; Completed reports whether the unresolved window was
// exhausted rather than aborted.
type ResolveStats struct {
	Table         string  `json:"table"`
	Total         int     `json:"total"`
	Matched       int     `json:"matched"`
	Unmatched     int     `json:"unmatched"`
	Updated       int     `json:"updated"`
	Failed        int     `json:"failed"`
	AvgConfidence float64 `json:"avg_confidence"`
	NextOffset    int     `json:"next_offset"`
	Completed     bool    `json:"completed"`
}
