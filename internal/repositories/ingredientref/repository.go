package ingredientref

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// Repository handles rows in the ingredient reference tables. Table and
// column names come from models.ReferenceTable constants, never from user
// input, so interpolating them into SQL is safe.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new ingredient reference repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListUnresolved returns a page of rows whose canonical item link is still
// unset, ordered by id so repeated passes walk the table deterministically.
func (r *Repository) ListUnresolved(ctx context.Context, table models.ReferenceTable, limit, offset int) ([]models.IngredientReference, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.ListUnresolved")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT %s AS id, %s AS raw_text, %s AS canonical_item_id
		FROM %s
		WHERE %s IS NULL
		ORDER BY %s
		LIMIT $1 OFFSET $2
	`, table.IDColumn, table.TextColumn, table.FKColumn, table.Name, table.FKColumn, table.IDColumn)

	var refs []models.IngredientReference
	if err := r.db.SelectContext(ctx, &refs, query, limit, offset); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":  table.Name,
			"limit":  limit,
			"offset": offset,
		}).Error("Failed to list unresolved references")
		return nil, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to list unresolved rows in %s", table.Name)
	}
	return refs, nil
}

// SetCanonicalItem links a single reference row to a canonical item. The
// guard on the link column keeps a retried batch from overwriting a link
// written by a concurrent run.
func (r *Repository) SetCanonicalItem(ctx context.Context, table models.ReferenceTable, refID, itemID string) error {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.SetCanonicalItem")
	defer span.End()

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE %s = $2
		  AND %s IS NULL
	`, table.Name, table.FKColumn, table.IDColumn, table.FKColumn)

	if _, err := r.db.ExecContext(ctx, query, itemID, refID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":   table.Name,
			"ref_id":  refID,
			"item_id": itemID,
		}).Error("Failed to link reference to canonical item")
		return httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to update row in %s", table.Name)
	}
	return nil
}

// RepointAll moves every reference to fromItemID across all reference
// tables onto toItemID inside one transaction and returns how many rows
// moved. All tables move or none do, so a merge never half-applies.
func (r *Repository) RepointAll(ctx context.Context, fromItemID, toItemID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.RepointAll")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to start transaction")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, table := range models.ReferenceTables() {
		query := fmt.Sprintf(`
			UPDATE %s
			SET %s = $1
			WHERE %s = $2
		`, table.Name, table.FKColumn, table.FKColumn)

		result, err := tx.ExecContext(ctx, query, toItemID, fromItemID)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table": table.Name,
				"from":  fromItemID,
				"to":    toItemID,
			}).Error("Failed to repoint references")
			return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to repoint rows in %s", table.Name)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"table": table.Name}).Error("Failed to read repoint row count")
			return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to repoint rows in %s", table.Name)
		}
		total += rows
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit repoint transaction")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return total, nil
}

// ClearItemAll sets the canonical item link back to null for every
// reference to the item across all reference tables inside one transaction
// and returns how many rows were cleared. Cleared rows return to the
// unresolved pool for future batch runs.
func (r *Repository) ClearItemAll(ctx context.Context, itemID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.ClearItemAll")
	defer span.End()

	ctx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to start transaction")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to start transaction")
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, table := range models.ReferenceTables() {
		query := fmt.Sprintf(`
			UPDATE %s
			SET %s = NULL
			WHERE %s = $1
		`, table.Name, table.FKColumn, table.FKColumn)

		result, err := tx.ExecContext(ctx, query, itemID)
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
				"table":   table.Name,
				"item_id": itemID,
			}).Error("Failed to clear references")
			return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to clear rows in %s", table.Name)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"table": table.Name}).Error("Failed to read clear row count")
			return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to clear rows in %s", table.Name)
		}
		total += rows
	}

	if err := tx.Commit(ctx); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to commit clear transaction")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to commit")
	}
	return total, nil
}

// CountByItem returns how many rows in the table reference the given item
func (r *Repository) CountByItem(ctx context.Context, table models.ReferenceTable, itemID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.CountByItem")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s = $1
	`, table.Name, table.FKColumn)

	var count int64
	if err := r.db.GetContext(ctx, &count, query, itemID); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"table":   table.Name,
			"item_id": itemID,
		}).Error("Failed to count references")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to count rows in %s", table.Name)
	}
	return count, nil
}

// CountItemReferences returns how many rows across all reference tables
// point at the given item
func (r *Repository) CountItemReferences(ctx context.Context, itemID string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.CountItemReferences")
	defer span.End()

	var total int64
	for _, table := range models.ReferenceTables() {
		count, err := r.CountByItem(ctx, table, itemID)
		if err != nil {
			return 0, err
		}
		total += count
	}
	return total, nil
}

// CountUnresolved returns how many rows in the table still have no
// canonical item link
func (r *Repository) CountUnresolved(ctx context.Context, table models.ReferenceTable) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "ingredientref.Repository.CountUnresolved")
	defer span.End()

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM %s
		WHERE %s IS NULL
	`, table.Name, table.FKColumn)

	var count int64
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"table": table.Name}).Error("Failed to count unresolved references")
		return 0, httperror.NewHTTPErrorf(http.StatusInternalServerError, "failed to count rows in %s", table.Name)
	}
	return count, nil
}
