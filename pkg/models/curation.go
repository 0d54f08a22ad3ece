package models

// CurationActionType identifies a reviewed vocabulary action
type CurationActionType string

const (
	// CurationActionUpdate renames or re-categorizes an item in place
	CurationActionUpdate CurationActionType = "update"
	// CurationActionMerge retires an item by repointing its references to another item
	CurationActionMerge CurationActionType = "merge"
	// CurationActionDelete removes an item after nulling all of its references
	CurationActionDelete CurationActionType = "delete"
)

// CurationAction is one entry of an externally reviewed action plan.
// Field usage depends on Type: update uses NewName/NewAliases/NewCategory,
// merge uses MergeInto (and optionally NewCategory for a synthesized target),
// delete uses only ID/OldName.
type CurationAction struct {
	Type        CurationActionType `json:"type" validate:"required,oneof=update merge delete"`
	ID          string             `json:"id" validate:"required"`
	OldName     string             `json:"old_name,omitempty"`
	NewName     string             `json:"new_name,omitempty"`
	NewAliases  *[]string          `json:"new_aliases,omitempty"`
	NewCategory *string            `json:"new_category,omitempty"`
	MergeInto   string             `json:"merge_into,omitempty"`
}

// CurationPlan is the ordered action batch supplied to the curator
type CurationPlan struct {
	Actions []CurationAction `json:"actions" validate:"required,dive"`
}

// ActionFailure records one action that could not be applied. Failures never
// abort the batch; they are tallied here for the final report.
type ActionFailure struct {
	Type   CurationActionType `json:"type"`
	ItemID string             `json:"item_id"`
	Reason string             `json:"reason"`
}

// CurationSummary reports the outcome of applying a curation plan
type CurationSummary struct {
	Updated        int             `json:"updated"`
	Merged         int             `json:"merged"`
	Deleted        int             `json:"deleted"`
	Created        int             `json:"created"`
	Skipped        int             `json:"skipped"`
	Repointed      int64           `json:"repointed"`
	Cleared        int64           `json:"cleared"`
	Failures       []ActionFailure `json:"failures,omitempty"`
	VocabularySize int             `json:"vocabulary_size"`
}
