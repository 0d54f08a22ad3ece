package curator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/sage/pkg/models"
)

type fakeItemStore struct {
	items     map[string]*models.CanonicalItem
	nextID    int
	deleteErr map[string]error
}

func newFakeItemStore(items ...*models.CanonicalItem) *fakeItemStore {
	store := &fakeItemStore{items: make(map[string]*models.CanonicalItem)}
	for _, item := range items {
		store.items[item.ID] = item
	}
	return store
}

func (f *fakeItemStore) Get(ctx context.Context, id string) (*models.CanonicalItem, error) {
	item, ok := f.items[id]
	if !ok || item.DeletedAt != nil {
		return nil, nil
	}
	return item, nil
}

func (f *fakeItemStore) GetByName(ctx context.Context, name string) (*models.CanonicalItem, error) {
	for _, item := range f.items {
		if item.DeletedAt == nil && strings.EqualFold(item.Name, name) {
			return item, nil
		}
	}
	return nil, nil
}

func (f *fakeItemStore) Create(ctx context.Context, req models.CreateCanonicalItemRequest) (*models.CanonicalItem, bool, error) {
	if existing, _ := f.GetByName(ctx, req.Name); existing != nil {
		return existing, false, nil
	}
	f.nextID++
	item := &models.CanonicalItem{
		ID:       fmt.Sprintf("created-%d", f.nextID),
		Name:     req.Name,
		Category: req.Category,
		Aliases:  pq.StringArray(req.Aliases),
	}
	f.items[item.ID] = item
	return item, true, nil
}

func (f *fakeItemStore) Update(ctx context.Context, id string, req models.UpdateCanonicalItemRequest) error {
	item, ok := f.items[id]
	if !ok || item.DeletedAt != nil {
		return errors.New("not found")
	}
	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.Category != nil {
		item.Category = req.Category
	}
	if req.Aliases != nil {
		item.Aliases = pq.StringArray(*req.Aliases)
	}
	return nil
}

func (f *fakeItemStore) Delete(ctx context.Context, id string) error {
	if err := f.deleteErr[id]; err != nil {
		return err
	}
	if item, ok := f.items[id]; ok {
		now := testTime()
		item.DeletedAt = &now
	}
	return nil
}

func (f *fakeItemStore) CountActive(ctx context.Context) (int, error) {
	count := 0
	for _, item := range f.items {
		if item.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

type fakeRefStore struct {
	counts     map[string]int64
	repointErr error
}

func (f *fakeRefStore) RepointAll(ctx context.Context, fromItemID, toItemID string) (int64, error) {
	if f.repointErr != nil {
		return 0, f.repointErr
	}
	moved := f.counts[fromItemID]
	f.counts[toItemID] += moved
	delete(f.counts, fromItemID)
	return moved, nil
}

func (f *fakeRefStore) ClearItemAll(ctx context.Context, itemID string) (int64, error) {
	cleared := f.counts[itemID]
	delete(f.counts, itemID)
	return cleared, nil
}

func (f *fakeRefStore) CountItemReferences(ctx context.Context, itemID string) (int64, error) {
	return f.counts[itemID], nil
}

type fakePublisher struct {
	events []models.VocabularyEvent
}

func (f *fakePublisher) Publish(ctx context.Context, event models.VocabularyEvent) error {
	f.events = append(f.events, event)
	return nil
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func testTime() time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
}

func item(id, name string) *models.CanonicalItem {
	return &models.CanonicalItem{ID: id, Name: name}
}

func TestCurator_Apply_Update(t *testing.T) {
	items := newFakeItemStore(item("a", "chedder cheese"))
	refs := &fakeRefStore{counts: map[string]int64{"a": 3}}
	publisher := &fakePublisher{}
	c := NewCurator(items, refs, publisher, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionUpdate, ID: "a", NewName: "cheddar cheese"},
	}}

	summary, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Empty(t, summary.Failures)
	assert.Equal(t, "cheddar cheese", items.items["a"].Name)
	// References keep pointing at the same id; a rename never touches them.
	assert.Equal(t, int64(3), refs.counts["a"])

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.VocabularyEventRenamed, publisher.events[0].Type)
	assert.Equal(t, "a", publisher.events[0].ItemID)
}

func TestCurator_Apply_Merge(t *testing.T) {
	t.Run("merge into existing item", func(t *testing.T) {
		items := newFakeItemStore(item("dup", "scallions"), item("target", "green onion"))
		refs := &fakeRefStore{counts: map[string]int64{"dup": 4, "target": 2}}
		publisher := &fakePublisher{}
		c := NewCurator(items, refs, publisher, testLogger())

		plan := models.CurationPlan{Actions: []models.CurationAction{
			{Type: models.CurationActionMerge, ID: "dup", MergeInto: "green onion"},
		}}

		summary, err := c.Apply(context.Background(), plan, false)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Merged)
		assert.Equal(t, 0, summary.Created)
		assert.Equal(t, int64(4), summary.Repointed)
		assert.Empty(t, summary.Failures)
		assert.Equal(t, int64(6), refs.counts["target"])
		assert.NotNil(t, items.items["dup"].DeletedAt)
		assert.Equal(t, 1, summary.VocabularySize)

		require.Len(t, publisher.events, 1)
		assert.Equal(t, models.VocabularyEventMerged, publisher.events[0].Type)
		assert.Equal(t, "dup", publisher.events[0].ItemID)
		assert.Equal(t, "target", publisher.events[0].MergedInto)
	})

	t.Run("synthesizes missing target", func(t *testing.T) {
		items := newFakeItemStore(item("dup", "spring onion"))
		refs := &fakeRefStore{counts: map[string]int64{"dup": 2}}
		publisher := &fakePublisher{}
		c := NewCurator(items, refs, publisher, testLogger())

		plan := models.CurationPlan{Actions: []models.CurationAction{
			{Type: models.CurationActionMerge, ID: "dup", MergeInto: "green onion"},
		}}

		summary, err := c.Apply(context.Background(), plan, false)
		require.NoError(t, err)

		assert.Equal(t, 1, summary.Merged)
		assert.Equal(t, 1, summary.Created)
		assert.Equal(t, int64(2), summary.Repointed)

		target, _ := items.GetByName(context.Background(), "green onion")
		require.NotNil(t, target)
		assert.Equal(t, refs.counts[target.ID], int64(2))

		require.Len(t, publisher.events, 2)
		assert.Equal(t, models.VocabularyEventCreated, publisher.events[0].Type)
		assert.Equal(t, models.VocabularyEventMerged, publisher.events[1].Type)
	})

	t.Run("merge into itself is rejected", func(t *testing.T) {
		items := newFakeItemStore(item("a", "garlic"))
		refs := &fakeRefStore{counts: map[string]int64{"a": 5}}
		c := NewCurator(items, refs, nil, testLogger())

		plan := models.CurationPlan{Actions: []models.CurationAction{
			{Type: models.CurationActionMerge, ID: "a", MergeInto: "garlic"},
		}}

		summary, err := c.Apply(context.Background(), plan, false)
		require.NoError(t, err)

		assert.Equal(t, 0, summary.Merged)
		require.Len(t, summary.Failures, 1)
		assert.Equal(t, "a", summary.Failures[0].ItemID)
		assert.Nil(t, items.items["a"].DeletedAt)
		assert.Equal(t, int64(5), refs.counts["a"])
	})

	t.Run("repoint failure leaves source item in place", func(t *testing.T) {
		items := newFakeItemStore(item("dup", "scallions"), item("target", "green onion"))
		refs := &fakeRefStore{
			counts:     map[string]int64{"dup": 4},
			repointErr: errors.New("deadlock detected"),
		}
		c := NewCurator(items, refs, nil, testLogger())

		plan := models.CurationPlan{Actions: []models.CurationAction{
			{Type: models.CurationActionMerge, ID: "dup", MergeInto: "green onion"},
		}}

		summary, err := c.Apply(context.Background(), plan, false)
		require.NoError(t, err)

		require.Len(t, summary.Failures, 1)
		assert.Nil(t, items.items["dup"].DeletedAt)
		assert.Equal(t, int64(4), refs.counts["dup"])
	})
}

func TestCurator_Apply_Delete(t *testing.T) {
	items := newFakeItemStore(item("junk", "misc grocery"))
	refs := &fakeRefStore{counts: map[string]int64{"junk": 7}}
	publisher := &fakePublisher{}
	c := NewCurator(items, refs, publisher, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionDelete, ID: "junk"},
	}}

	summary, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, int64(7), summary.Cleared)
	assert.NotNil(t, items.items["junk"].DeletedAt)
	assert.Equal(t, int64(0), refs.counts["junk"])

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.VocabularyEventDeleted, publisher.events[0].Type)
}

func TestCurator_Apply_PassOrdering(t *testing.T) {
	// The plan lists the merge before the update, but updates always run
	// first, so the merge finds the renamed target instead of synthesizing
	// a duplicate.
	items := newFakeItemStore(item("a", "chedder"), item("b", "cheddar cheese block"))
	refs := &fakeRefStore{counts: map[string]int64{"b": 3}}
	c := NewCurator(items, refs, nil, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionMerge, ID: "b", MergeInto: "cheddar cheese"},
		{Type: models.CurationActionUpdate, ID: "a", NewName: "cheddar cheese"},
	}}

	summary, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 0, summary.Created)
	assert.Equal(t, int64(3), refs.counts["a"])
	assert.NotNil(t, items.items["b"].DeletedAt)
	assert.Equal(t, 1, summary.VocabularySize)
}

func TestCurator_Apply_FailuresDoNotAbort(t *testing.T) {
	items := newFakeItemStore(item("good", "stale item"))
	refs := &fakeRefStore{counts: map[string]int64{"good": 1}}
	c := NewCurator(items, refs, nil, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionUpdate, ID: "missing", NewName: "whatever"},
		{Type: models.CurationActionDelete, ID: "also-missing"},
		{Type: models.CurationActionDelete, ID: "good"},
	}}

	summary, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)

	// The update of a missing item fails; the delete of a missing item is a
	// no-op skip. Neither stops the rest of the plan.
	assert.Len(t, summary.Failures, 1)
	assert.Equal(t, models.CurationActionUpdate, summary.Failures[0].Type)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 1, summary.Deleted)
	assert.NotNil(t, items.items["good"].DeletedAt)
}

func TestCurator_Apply_RerunIsClean(t *testing.T) {
	// A partially applied plan gets re-run in full; merges and deletes whose
	// source is already gone are skipped, not failed.
	items := newFakeItemStore(item("dup", "scallions"), item("target", "green onion"), item("junk", "misc grocery"))
	refs := &fakeRefStore{counts: map[string]int64{"dup": 4, "junk": 2}}
	c := NewCurator(items, refs, nil, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionMerge, ID: "dup", MergeInto: "green onion"},
		{Type: models.CurationActionDelete, ID: "junk"},
	}}

	first, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Merged)
	assert.Equal(t, 1, first.Deleted)
	assert.Empty(t, first.Failures)

	second, err := c.Apply(context.Background(), plan, false)
	require.NoError(t, err)

	assert.Empty(t, second.Failures)
	assert.Equal(t, 2, second.Skipped)
	assert.Equal(t, 0, second.Merged)
	assert.Equal(t, 0, second.Deleted)
	assert.Equal(t, int64(0), second.Repointed)
	assert.Equal(t, int64(4), refs.counts["target"])
	assert.Equal(t, first.VocabularySize, second.VocabularySize)
}

func TestCurator_Apply_DryRun(t *testing.T) {
	items := newFakeItemStore(item("a", "chedder"), item("b", "scallions"))
	refs := &fakeRefStore{counts: map[string]int64{"b": 4}}
	publisher := &fakePublisher{}
	c := NewCurator(items, refs, publisher, testLogger())

	plan := models.CurationPlan{Actions: []models.CurationAction{
		{Type: models.CurationActionUpdate, ID: "a", NewName: "cheddar"},
		{Type: models.CurationActionMerge, ID: "b", MergeInto: "green onion"},
	}}

	summary, err := c.Apply(context.Background(), plan, true)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Merged)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, int64(4), summary.Repointed)

	// Nothing actually changed.
	assert.Equal(t, "chedder", items.items["a"].Name)
	assert.Nil(t, items.items["b"].DeletedAt)
	assert.Equal(t, int64(4), refs.counts["b"])
	assert.Empty(t, publisher.events)
	assert.Equal(t, 2, summary.VocabularySize)
}
