package models

import "time"

// VocabularyEventType identifies a change to the canonical vocabulary
type VocabularyEventType string

const (
	// VocabularyEventCreated means a new canonical item was added
	VocabularyEventCreated VocabularyEventType = "vocabulary.item.created"
	// VocabularyEventRenamed means an item changed name or category in place
	VocabularyEventRenamed VocabularyEventType = "vocabulary.item.renamed"
	// VocabularyEventMerged means an item was retired into another item
	VocabularyEventMerged VocabularyEventType = "vocabulary.item.merged"
	// VocabularyEventDeleted means an item was removed from the vocabulary
	VocabularyEventDeleted VocabularyEventType = "vocabulary.item.deleted"
)

// VocabularyEvent notifies downstream consumers of a vocabulary change
type VocabularyEvent struct {
	Type       VocabularyEventType `json:"type"`
	ItemID     string              `json:"item_id"`
	ItemName   string              `json:"item_name,omitempty"`
	MergedInto string              `json:"merged_into,omitempty"`
	OccurredAt time.Time           `json:"occurred_at"`
}
