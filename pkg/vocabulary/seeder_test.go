package vocabulary

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

type fakeItemStore struct {
	existing map[string]bool
	created  []string
	failOn   map[string]error
}

func (f *fakeItemStore) Create(ctx context.Context, req models.CreateCanonicalItemRequest) (*models.CanonicalItem, bool, error) {
	if err := f.failOn[req.Name]; err != nil {
		return nil, false, err
	}
	if f.existing[req.Name] {
		return &models.CanonicalItem{Name: req.Name}, false, nil
	}
	f.created = append(f.created, req.Name)
	return &models.CanonicalItem{Name: req.Name}, true, nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func TestSeeder_Seed(t *testing.T) {
	store := &fakeItemStore{
		existing: map[string]bool{"apple": true},
		failOn:   map[string]error{"butter": errors.New("db down")},
	}
	seeder := NewSeeder(store, testLogger())

	result, err := seeder.Seed(context.Background(), []models.CreateCanonicalItemRequest{
		{Name: "apple"},
		{Name: "banana"},
		{Name: "butter"},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, []string{"banana"}, store.created)
}

func TestSeeder_SeedFromFile(t *testing.T) {
	t.Run("loads and seeds a valid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{
			"items": [
				{"name": "apple", "category": "produce", "aliases": ["apples"]},
				{"name": "milk", "category": "dairy"}
			]
		}`), 0o600))

		store := &fakeItemStore{}
		result, err := NewSeeder(store, testLogger()).SeedFromFile(context.Background(), path)
		require.NoError(t, err)

		assert.Equal(t, 2, result.Created)
		assert.Equal(t, []string{"apple", "milk"}, store.created)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := NewSeeder(&fakeItemStore{}, testLogger()).SeedFromFile(context.Background(), "/nope/seed.json")
		assert.Error(t, err)
	})

	t.Run("item without name is rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"items": [{"category": "produce"}]}`), 0o600))

		_, err := NewSeeder(&fakeItemStore{}, testLogger()).SeedFromFile(context.Background(), path)
		assert.Error(t, err)
	})
}
