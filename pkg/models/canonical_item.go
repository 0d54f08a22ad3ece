package models

import (
	"time"

	"github.com/lib/pq"
)

// CanonicalItem is a single controlled-vocabulary entry representing one
// real-world ingredient concept. Names and aliases together form one disjoint
// lookup space: no name or alias may collide with another active item's name
// or alias (checked case-insensitively at index build time).
type CanonicalItem struct {
	ID        string         `json:"id" db:"id"`
	Name      string         `json:"name" db:"name"`
	Category  *string        `json:"category,omitempty" db:"category"`
	Aliases   pq.StringArray `json:"aliases" db:"aliases"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt *time.Time     `json:"deleted_at,omitempty" db:"deleted_at"`
}

// CreateCanonicalItemRequest is the request to create a canonical item
type CreateCanonicalItemRequest struct {
	Name     string   `json:"name" validate:"required"`
	Category *string  `json:"category,omitempty"`
	Aliases  []string `json:"aliases,omitempty"`
}

// UpdateCanonicalItemRequest is the request to update a canonical item in place.
// Nil fields are left unchanged.
type UpdateCanonicalItemRequest struct {
	Name     *string   `json:"name,omitempty"`
	Category *string   `json:"category,omitempty"`
	Aliases  *[]string `json:"aliases,omitempty"`
}

// CategoryCount is one row of the per-category vocabulary report
type CategoryCount struct {
	Category string `json:"category" db:"category"`
	Count    int    `json:"count" db:"count"`
}

// CanonicalItemListResponse is a paged listing of canonical items
type CanonicalItemListResponse struct {
	Items      []CanonicalItem `json:"items"`
	TotalCount int             `json:"total_count"`
	Page       int             `json:"page"`
	PageSize   int             `json:"page_size"`
}
