// Package resolver walks a reference table in pages and links each
// unresolved row to a canonical item through the matcher.
package resolver

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/pkg/matching"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// DefaultPageSize is how many unresolved rows a run fetches per page
const DefaultPageSize = 100

// ReferenceStore reads and links rows in a reference table
type ReferenceStore interface {
	ListUnresolved(ctx context.Context, table models.ReferenceTable, limit, offset int) ([]models.IngredientReference, error)
	SetCanonicalItem(ctx context.Context, table models.ReferenceTable, refID, itemID string) error
}

// ItemStore loads the active vocabulary
type ItemStore interface {
	ListActive(ctx context.Context) ([]models.CanonicalItem, error)
}

// Resolver runs batch resolution over the reference tables. The vocabulary
// is loaded and indexed once per run, so items curated mid-run are not seen
// until the next run.
type Resolver struct {
	items          ItemStore
	refs           ReferenceStore
	logger         ectologger.Logger
	pageSize       int
	fuzzyThreshold float64
}

// NewResolver creates a batch resolver. A pageSize below 1 falls back to
// DefaultPageSize; a fuzzyThreshold of 0 falls back to the matching default.
func NewResolver(items ItemStore, refs ReferenceStore, logger ectologger.Logger, pageSize int, fuzzyThreshold float64) *Resolver {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if fuzzyThreshold == 0 {
		fuzzyThreshold = matching.DefaultFuzzyThreshold
	}
	return &Resolver{
		items:          items,
		refs:           refs,
		logger:         logger,
		pageSize:       pageSize,
		fuzzyThreshold: fuzzyThreshold,
	}
}

// Resolve processes the unresolved rows of one reference table starting at
// startOffset. A failure on a single row is recorded and skipped; a failure
// fetching a page aborts the run with NextOffset preserved so a later run
// can resume. Returns stats even when the run aborts early.
func (r *Resolver) Resolve(ctx context.Context, table models.ReferenceTable, startOffset int) (*models.ResolveStats, error) {
	ctx, span := tracing.StartSpan(ctx, "resolver.Resolver.Resolve")
	defer span.End()

	if startOffset < 0 {
		startOffset = 0
	}

	stats := &models.ResolveStats{
		Table:      table.Name,
		NextOffset: startOffset,
	}

	items, err := r.items.ListActive(ctx)
	if err != nil {
		return stats, err
	}
	if len(items) == 0 {
		r.logger.WithContext(ctx).Warn("Vocabulary is empty, nothing to resolve against")
		stats.Completed = true
		return stats, nil
	}

	index, collisions := matching.NewIndex(items, r.fuzzyThreshold)
	for _, collision := range collisions {
		r.logger.WithContext(ctx).WithFields(map[string]any{
			"key":   collision.Key,
			"items": collision.Items,
		}).Warn("Vocabulary key collision, first item by name order wins")
	}
	matcher := matching.NewMatcher(index)

	var confidenceSum float64
	for {
		if err := ctx.Err(); err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":       table.Name,
				"next_offset": stats.NextOffset,
			}).Warn("Resolution run cancelled")
			finishStats(stats, confidenceSum)
			return stats, httperror.NewHTTPError(http.StatusRequestTimeout, "resolution run cancelled")
		}

		refs, err := r.refs.ListUnresolved(ctx, table, r.pageSize, stats.NextOffset)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":       table.Name,
				"next_offset": stats.NextOffset,
			}).Error("Failed to fetch page, aborting run")
			finishStats(stats, confidenceSum)
			return stats, err
		}
		if len(refs) == 0 {
			break
		}

		for _, ref := range refs {
			stats.Total++
			decision := matcher.Match(ref.RawText)
			if decision.CanonicalItemID == nil {
				stats.Unmatched++
				r.logger.WithContext(ctx).WithFields(map[string]any{
					"table":    table.Name,
					"ref_id":   ref.ID,
					"raw_text": ref.RawText,
					"key":      decision.Key,
				}).Debug("No canonical item for reference")
				continue
			}

			stats.Matched++
			confidenceSum += decision.Confidence

			if err := r.refs.SetCanonicalItem(ctx, table, ref.ID, *decision.CanonicalItemID); err != nil {
				stats.Failed++
				r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
					"table":  table.Name,
					"ref_id": ref.ID,
				}).Error("Failed to link reference, skipping row")
				continue
			}
			stats.Updated++
		}

		// Linked rows leave the unresolved window, so only failed and
		// unmatched rows still occupy offsets ahead of the next page.
		stats.NextOffset = startOffset + stats.Total - stats.Updated
	}

	stats.Completed = true
	finishStats(stats, confidenceSum)
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"table":     table.Name,
		"total":     stats.Total,
		"matched":   stats.Matched,
		"unmatched": stats.Unmatched,
		"updated":   stats.Updated,
		"failed":    stats.Failed,
	}).Info("Resolution run complete")
	return stats, nil
}

func finishStats(stats *models.ResolveStats, confidenceSum float64) {
	if stats.Matched > 0 {
		stats.AvgConfidence = confidenceSum / float64(stats.Matched)
	}
}
