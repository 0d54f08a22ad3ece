package canonicalitem

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/sage/pkg/database"
	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

const uniqueViolation = "23505"

var columns = []string{"id", "name", "category", "aliases", "created_at", "updated_at", "deleted_at"}

// Repository handles canonical item persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new canonical item repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListActive returns every non-deleted canonical item, ordered by name
func (r *Repository) ListActive(ctx context.Context) ([]models.CanonicalItem, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.ListActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("canonical_items")
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("name")

	query, args := sb.Build()
	var items []models.CanonicalItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list canonical items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list canonical items")
	}
	return items, nil
}

// List returns a page of non-deleted canonical items with a total count
func (r *Repository) List(ctx context.Context, page, pageSize int) (*models.CanonicalItemListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize

	countSb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	countSb.Select("COUNT(*)")
	countSb.From("canonical_items")
	countSb.Where(countSb.IsNull("deleted_at"))

	countQuery, countArgs := countSb.Build()
	var totalCount int
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count canonical items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count canonical items")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("canonical_items")
	sb.Where(sb.IsNull("deleted_at"))
	sb.OrderBy("name")
	sb.Limit(pageSize).Offset(offset)

	query, args := sb.Build()
	var items []models.CanonicalItem
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"page": page, "page_size": pageSize}).Error("Failed to list canonical items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list canonical items")
	}

	return &models.CanonicalItemListResponse{
		Items:      items,
		TotalCount: totalCount,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// Get retrieves a canonical item by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.CanonicalItem, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("canonical_items")
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	var item models.CanonicalItem
	if err := r.db.GetContext(ctx, &item, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to get canonical item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get canonical item")
	}
	return &item, nil
}

// GetByName retrieves a canonical item by name, case-insensitively.
// Returns nil without error when nothing matches.
func (r *Repository) GetByName(ctx context.Context, name string) (*models.CanonicalItem, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.GetByName")
	defer span.End()

	query := `
		SELECT id, name, category, aliases, created_at, updated_at, deleted_at
		FROM canonical_items
		WHERE LOWER(name) = LOWER($1)
		  AND deleted_at IS NULL
		LIMIT 1
	`

	var item models.CanonicalItem
	if err := r.db.GetContext(ctx, &item, query, name); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": name}).Error("Failed to get canonical item by name")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get canonical item")
	}
	return &item, nil
}

// Create inserts a new canonical item. A duplicate name is not an error: the
// existing item is returned with created=false.
func (r *Repository) Create(ctx context.Context, req models.CreateCanonicalItemRequest) (*models.CanonicalItem, bool, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.Create")
	defer span.End()

	now := time.Now().UTC()
	item := models.CanonicalItem{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Category:  req.Category,
		Aliases:   pq.StringArray(req.Aliases),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if item.Aliases == nil {
		item.Aliases = pq.StringArray{}
	}

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("canonical_items")
	sb.Cols("id", "name", "category", "aliases", "created_at", "updated_at")
	sb.Values(item.ID, item.Name, item.Category, item.Aliases, item.CreatedAt, item.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			r.logger.WithContext(ctx).WithFields(map[string]any{"name": req.Name}).Info("Canonical item already present")
			existing, getErr := r.GetByName(ctx, req.Name)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": req.Name}).Error("Failed to create canonical item")
		return nil, false, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create canonical item")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": item.ID, "name": item.Name}).Info("Created canonical item")
	return &item, true, nil
}

// Update renames or re-categorizes a canonical item in place. Nil request
// fields are left unchanged. The id is stable, so references need no
// repointing.
func (r *Repository) Update(ctx context.Context, id string, req models.UpdateCanonicalItemRequest) error {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.Update")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("canonical_items")

	assignments := []string{sb.Assign("updated_at", time.Now().UTC())}
	if req.Name != nil {
		assignments = append(assignments, sb.Assign("name", *req.Name))
	}
	if req.Category != nil {
		assignments = append(assignments, sb.Assign("category", *req.Category))
	}
	if req.Aliases != nil {
		assignments = append(assignments, sb.Assign("aliases", pq.StringArray(*req.Aliases)))
	}
	sb.Set(assignments...)
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to update canonical item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update canonical item")
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "canonical item %s not found", id)
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Updated canonical item")
	return nil
}

// Delete soft deletes a canonical item. Deleting an already-deleted item is
// a no-op, so a retry after partial completion is safe.
func (r *Repository) Delete(ctx context.Context, id string) error {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.Delete")
	defer span.End()

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("canonical_items")
	sb.Set(sb.Assign("deleted_at", now), sb.Assign("updated_at", now))
	sb.Where(
		sb.Equal("id", id),
		sb.IsNull("deleted_at"),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"id": id}).Error("Failed to delete canonical item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete canonical item")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"id": id}).Info("Deleted canonical item")
	return nil
}

// CountByCategory returns active item counts grouped by category. Items
// without a category report under "uncategorized".
func (r *Repository) CountByCategory(ctx context.Context) ([]models.CategoryCount, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.CountByCategory")
	defer span.End()

	query := `
		SELECT COALESCE(category, 'uncategorized') AS category, COUNT(*) AS count
		FROM canonical_items
		WHERE deleted_at IS NULL
		GROUP BY COALESCE(category, 'uncategorized')
		ORDER BY category
	`

	var counts []models.CategoryCount
	if err := r.db.SelectContext(ctx, &counts, query); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count canonical items by category")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count canonical items")
	}
	return counts, nil
}

// CountActive returns the active vocabulary size
func (r *Repository) CountActive(ctx context.Context) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "canonicalitem.Repository.CountActive")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("canonical_items")
	sb.Where(sb.IsNull("deleted_at"))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count canonical items")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count canonical items")
	}
	return count, nil
}
