package models

// IngredientReference is a row from any table carrying a canonical_item_id
// foreign key plus the free-text field the link was resolved from. The column
// names vary per table; see ReferenceTable.
type IngredientReference struct {
	ID              string  `json:"id" db:"id"`
	RawText         string  `json:"raw_text" db:"raw_text"`
	CanonicalItemID *string `json:"canonical_item_id,omitempty" db:"canonical_item_id"`
}

// ReferenceTable describes a table that references canonical items. Column
// names are trusted constants, never user input (they are interpolated into
// SQL by the reference repository).
type ReferenceTable struct {
	Name       string `json:"name"`
	IDColumn   string `json:"id_column"`
	TextColumn string `json:"text_column"`
	FKColumn   string `json:"fk_column"`
}

// ReferenceTables returns every table that carries a canonical_item_id
// foreign key. The curator repoints or nulls all of them; the resolver
// processes them one table per run.
func ReferenceTables() []ReferenceTable {
	return []ReferenceTable{
		{Name: "recipe_ingredients", IDColumn: "id", TextColumn: "ingredient_name", FKColumn: "canonical_item_id"},
		{Name: "receipt_items", IDColumn: "id", TextColumn: "parsed_name", FKColumn: "canonical_item_id"},
		{Name: "pantry_items", IDColumn: "id", TextColumn: "raw_text", FKColumn: "canonical_item_id"},
	}
}

// ReferenceTableByName looks up a configured reference table by table name
func ReferenceTableByName(name string) (ReferenceTable, bool) {
	for _, t := range ReferenceTables() {
		if t.Name == name {
			return t, true
		}
	}
	return ReferenceTable{}, false
}
