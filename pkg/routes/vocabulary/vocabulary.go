// Package vocabulary exposes the admin spot-check surface: browse the
// canonical vocabulary and try the matcher against arbitrary text.
package vocabulary

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
)

// ItemStore reads the canonical vocabulary
type ItemStore interface {
	List(ctx context.Context, page, pageSize int) (*models.CanonicalItemListResponse, error)
	ListActive(ctx context.Context) ([]models.CanonicalItem, error)
	CountByCategory(ctx context.Context) ([]models.CategoryCount, error)
}

// ReferenceStore counts unresolved reference rows
type ReferenceStore interface {
	CountUnresolved(ctx context.Context, table models.ReferenceTable) (int64, error)
}

// Handler serves the vocabulary admin endpoints
type Handler struct {
	items          ItemStore
	refs           ReferenceStore
	logger         ectologger.Logger
	fuzzyThreshold float64
}

// NewHandler creates a vocabulary handler
func NewHandler(items ItemStore, refs ReferenceStore, logger ectologger.Logger, fuzzyThreshold float64) *Handler {
	if fuzzyThreshold == 0 {
		fuzzyThreshold = matching.DefaultFuzzyThreshold
	}
	return &Handler{
		items:          items,
		refs:           refs,
		logger:         logger,
		fuzzyThreshold: fuzzyThreshold,
	}
}

// Register registers vocabulary routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.ListItems)
	g.GET("/report", h.Report)
	g.POST("/match", h.MatchText)
}

// ListItems returns a page of the active vocabulary
func (h *Handler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 50)

	resp, err := h.items.List(ctx, page, pageSize)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// MatchRequest is the request body for trying the matcher
type MatchRequest struct {
	Text string `json:"text"`
}

// MatchText resolves one raw phrase against the current vocabulary and
// returns the full decision. The index is rebuilt per request; this is an
// operator tool, not a hot path.
func (h *Handler) MatchText(c echo.Context) error {
	ctx := c.Request().Context()

	var req MatchRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	items, err := h.items.ListActive(ctx)
	if err != nil {
		return err
	}

	index, collisions := matching.NewIndex(items, h.fuzzyThreshold)
	for _, collision := range collisions {
		h.logger.WithContext(ctx).WithFields(map[string]any{
			"key":   collision.Key,
			"items": collision.Items,
		}).Warn("Vocabulary key collision, first item by name order wins")
	}
	decision := matching.NewMatcher(index).Match(req.Text)
	return c.JSON(http.StatusOK, decision)
}

// VocabularyReport summarizes vocabulary health for operators
type VocabularyReport struct {
	VocabularySize int                    `json:"vocabulary_size"`
	ByCategory     []models.CategoryCount `json:"by_category"`
	Unresolved     map[string]int64       `json:"unresolved"`
}

// Report returns the vocabulary size per category and the unresolved row
// count per reference table
func (h *Handler) Report(c echo.Context) error {
	ctx := c.Request().Context()

	byCategory, err := h.items.CountByCategory(ctx)
	if err != nil {
		return err
	}

	report := &VocabularyReport{
		ByCategory: byCategory,
		Unresolved: make(map[string]int64),
	}
	for _, count := range byCategory {
		report.VocabularySize += count.Count
	}

	for _, table := range models.ReferenceTables() {
		count, err := h.refs.CountUnresolved(ctx, table)
		if err != nil {
			return err
		}
		report.Unresolved[table.Name] = count
	}

	return c.JSON(http.StatusOK, report)
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
