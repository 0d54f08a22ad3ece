// Package curator applies reviewed vocabulary change plans: in-place
// updates, merges that repoint references, and deletes that release them.
package curator

import (
	"context"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/sage/pkg/models"
	"github.com/Ramsey-B/sage/pkg/tracing"
)

// ItemStore reads and mutates the canonical vocabulary
type ItemStore interface {
	Get(ctx context.Context, id string) (*models.CanonicalItem, error)
	GetByName(ctx context.Context, name string) (*models.CanonicalItem, error)
	Create(ctx context.Context, req models.CreateCanonicalItemRequest) (*models.CanonicalItem, bool, error)
	Update(ctx context.Context, id string, req models.UpdateCanonicalItemRequest) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context) (int, error)
}

// ReferenceStore repoints and releases reference table rows. RepointAll and
// ClearItemAll cover every reference table in a single transaction.
type ReferenceStore interface {
	RepointAll(ctx context.Context, fromItemID, toItemID string) (int64, error)
	ClearItemAll(ctx context.Context, itemID string) (int64, error)
	CountItemReferences(ctx context.Context, itemID string) (int64, error)
}

// Publisher emits vocabulary change events. A nil Publisher disables
// publishing.
type Publisher interface {
	Publish(ctx context.Context, event models.VocabularyEvent) error
}

// Curator applies a curation plan in three fixed passes: updates first,
// then merges, then deletes. The ordering lets a plan rename an item and
// merge another into it in the same batch. References are always moved off
// an item before the item itself is removed, so an interrupted batch never
// leaves a reference pointing at a missing item.
type Curator struct {
	items     ItemStore
	refs      ReferenceStore
	publisher Publisher
	logger    ectologger.Logger
}

// NewCurator creates a curator over the vocabulary and reference stores
func NewCurator(items ItemStore, refs ReferenceStore, publisher Publisher, logger ectologger.Logger) *Curator {
	return &Curator{
		items:     items,
		refs:      refs,
		publisher: publisher,
		logger:    logger,
	}
}

// Apply executes every action in the plan. A failed action is recorded in
// the summary and never aborts the batch. With dryRun set, actions are
// checked against the current vocabulary but nothing is written and no
// events are published.
func (c *Curator) Apply(ctx context.Context, plan models.CurationPlan, dryRun bool) (*models.CurationSummary, error) {
	ctx, span := tracing.StartSpan(ctx, "curator.Curator.Apply")
	defer span.End()

	summary := &models.CurationSummary{}

	for _, action := range actionsOfType(plan, models.CurationActionUpdate) {
		c.applyUpdate(ctx, action, summary, dryRun)
	}
	for _, action := range actionsOfType(plan, models.CurationActionMerge) {
		c.applyMerge(ctx, action, summary, dryRun)
	}
	for _, action := range actionsOfType(plan, models.CurationActionDelete) {
		c.applyDelete(ctx, action, summary, dryRun)
	}

	size, err := c.items.CountActive(ctx)
	if err != nil {
		c.logger.WithContext(ctx).WithError(err).Warn("Failed to count vocabulary after curation")
	} else {
		summary.VocabularySize = size
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"updated":   summary.Updated,
		"merged":    summary.Merged,
		"deleted":   summary.Deleted,
		"created":   summary.Created,
		"skipped":   summary.Skipped,
		"repointed": summary.Repointed,
		"cleared":   summary.Cleared,
		"failures":  len(summary.Failures),
		"dry_run":   dryRun,
	}).Info("Curation plan applied")
	return summary, nil
}

func actionsOfType(plan models.CurationPlan, actionType models.CurationActionType) []models.CurationAction {
	var actions []models.CurationAction
	for _, action := range plan.Actions {
		if action.Type == actionType {
			actions = append(actions, action)
		}
	}
	return actions
}

func (c *Curator) applyUpdate(ctx context.Context, action models.CurationAction, summary *models.CurationSummary, dryRun bool) {
	if action.NewName == "" && action.NewAliases == nil && action.NewCategory == nil {
		c.fail(ctx, summary, action, "update action has no changes")
		return
	}

	if dryRun {
		item, err := c.items.Get(ctx, action.ID)
		if err != nil {
			c.fail(ctx, summary, action, err.Error())
			return
		}
		if item == nil {
			c.fail(ctx, summary, action, "item not found")
			return
		}
		summary.Updated++
		return
	}

	req := models.UpdateCanonicalItemRequest{
		Aliases:  action.NewAliases,
		Category: action.NewCategory,
	}
	if action.NewName != "" {
		req.Name = &action.NewName
	}
	if err := c.items.Update(ctx, action.ID, req); err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}
	summary.Updated++
	c.publish(ctx, models.VocabularyEvent{
		Type:     models.VocabularyEventRenamed,
		ItemID:   action.ID,
		ItemName: action.NewName,
	})
}

func (c *Curator) applyMerge(ctx context.Context, action models.CurationAction, summary *models.CurationSummary, dryRun bool) {
	if action.MergeInto == "" {
		c.fail(ctx, summary, action, "merge action has no target name")
		return
	}

	source, err := c.items.Get(ctx, action.ID)
	if err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}
	if source == nil {
		c.skip(ctx, summary, action, "source item already removed")
		return
	}

	target, err := c.items.GetByName(ctx, action.MergeInto)
	if err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}

	if dryRun {
		if target != nil && target.ID == source.ID {
			c.fail(ctx, summary, action, "merge target is the source item")
			return
		}
		if target == nil {
			summary.Created++
		}
		refCount, countErr := c.refs.CountItemReferences(ctx, source.ID)
		if countErr != nil {
			c.fail(ctx, summary, action, countErr.Error())
			return
		}
		summary.Repointed += refCount
		summary.Merged++
		return
	}

	if target == nil {
		created, wasCreated, createErr := c.items.Create(ctx, models.CreateCanonicalItemRequest{
			Name:     action.MergeInto,
			Category: action.NewCategory,
		})
		if createErr != nil {
			c.fail(ctx, summary, action, createErr.Error())
			return
		}
		target = created
		if wasCreated {
			summary.Created++
			c.publish(ctx, models.VocabularyEvent{
				Type:     models.VocabularyEventCreated,
				ItemID:   target.ID,
				ItemName: target.Name,
			})
		}
	}
	if target.ID == source.ID {
		c.fail(ctx, summary, action, "merge target is the source item")
		return
	}

	moved, repointErr := c.refs.RepointAll(ctx, source.ID, target.ID)
	if repointErr != nil {
		c.fail(ctx, summary, action, fmt.Sprintf("repoint: %s", repointErr.Error()))
		return
	}
	summary.Repointed += moved

	if err := c.items.Delete(ctx, source.ID); err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}

	summary.Merged++
	c.publish(ctx, models.VocabularyEvent{
		Type:       models.VocabularyEventMerged,
		ItemID:     source.ID,
		ItemName:   source.Name,
		MergedInto: target.ID,
	})
}

func (c *Curator) applyDelete(ctx context.Context, action models.CurationAction, summary *models.CurationSummary, dryRun bool) {
	item, err := c.items.Get(ctx, action.ID)
	if err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}
	if item == nil {
		c.skip(ctx, summary, action, "item already removed")
		return
	}

	if dryRun {
		refCount, countErr := c.refs.CountItemReferences(ctx, item.ID)
		if countErr != nil {
			c.fail(ctx, summary, action, countErr.Error())
			return
		}
		summary.Cleared += refCount
		summary.Deleted++
		return
	}

	cleared, clearErr := c.refs.ClearItemAll(ctx, item.ID)
	if clearErr != nil {
		c.fail(ctx, summary, action, fmt.Sprintf("clear: %s", clearErr.Error()))
		return
	}
	summary.Cleared += cleared

	if err := c.items.Delete(ctx, item.ID); err != nil {
		c.fail(ctx, summary, action, err.Error())
		return
	}

	summary.Deleted++
	c.publish(ctx, models.VocabularyEvent{
		Type:     models.VocabularyEventDeleted,
		ItemID:   item.ID,
		ItemName: item.Name,
	})
}

// skip records an action whose item is already gone. Merges and deletes
// remove their source, so re-applying a partially applied plan hits these
// misses; they are no-ops, not failures.
func (c *Curator) skip(ctx context.Context, summary *models.CurationSummary, action models.CurationAction, reason string) {
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"type":    string(action.Type),
		"item_id": action.ID,
		"reason":  reason,
	}).Warn("Curation action skipped")
	summary.Skipped++
}

func (c *Curator) fail(ctx context.Context, summary *models.CurationSummary, action models.CurationAction, reason string) {
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"type":    string(action.Type),
		"item_id": action.ID,
		"reason":  reason,
	}).Error("Curation action failed")
	summary.Failures = append(summary.Failures, models.ActionFailure{
		Type:   action.Type,
		ItemID: action.ID,
		Reason: reason,
	})
}

func (c *Curator) publish(ctx context.Context, event models.VocabularyEvent) {
	if c.publisher == nil {
		return
	}
	event.OccurredAt = time.Now().UTC()
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"type":    string(event.Type),
			"item_id": event.ItemID,
		}).Warn("Failed to publish vocabulary event")
	}
}
