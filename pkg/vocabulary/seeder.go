// Package vocabulary loads curated seed vocabularies into the canonical
// item table.
package vocabulary

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// ItemStore creates canonical items
type ItemStore interface {
	Create(ctx context.Context, req models.CreateCanonicalItemRequest) (*models.CanonicalItem, bool, error)
}

// SeedFile is the on-disk seed vocabulary format
type SeedFile struct {
	Items []models.CreateCanonicalItemRequest `json:"items" validate:"required,dive"`
}

// SeedResult reports a seeding run
type SeedResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// Seeder inserts seed vocabularies. Items whose names already exist are
// skipped rather than treated as errors, so re-running a seed is safe.
type Seeder struct {
	items    ItemStore
	logger   ectologger.Logger
	validate *validator.Validate
}

// NewSeeder creates a vocabulary seeder
func NewSeeder(items ItemStore, logger ectologger.Logger) *Seeder {
	return &Seeder{
		items:    items,
		logger:   logger,
		validate: validator.New(),
	}
}

// SeedFromFile loads a seed vocabulary from a JSON file and inserts it
func (s *Seeder) SeedFromFile(ctx context.Context, path string) (*SeedResult, error) {
	ctx, span := tracing.StartSpan(ctx, "vocabulary.Seeder.SeedFromFile")
	defer span.End()

	data, err := os.ReadFile(path)
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"path": path}).Error("Failed to read seed file")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "failed to read seed file %s", path)
	}

	var file SeedFile
	if err := json.Unmarshal(data, &file); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"path": path}).Error("Failed to parse seed file")
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid seed file %s", path)
	}
	if err := s.validate.Struct(file); err != nil {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid seed file: %s", err.Error())
	}

	return s.Seed(ctx, file.Items)
}

// Seed inserts the given items, tolerating duplicates
func (s *Seeder) Seed(ctx context.Context, items []models.CreateCanonicalItemRequest) (*SeedResult, error) {
	ctx, span := tracing.StartSpan(ctx, "vocabulary.Seeder.Seed")
	defer span.End()

	result := &SeedResult{}
	for _, req := range items {
		_, created, err := s.items.Create(ctx, req)
		if err != nil {
			result.Failed++
			s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"name": req.Name}).Error("Failed to seed item")
			continue
		}
		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"created": result.Created,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}).Info("Seed run complete")
	return result, nil
}
