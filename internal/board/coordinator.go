package board

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kshimizu/taskboard/internal/eventbus"
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
	"github.com/kshimizu/taskboard/pkg/cerr"
)

type MoveState string

const (
	MoveStateAwaitingConfirmation MoveState = "awaiting_confirmation"
	MoveStateConfirmed            MoveState = "confirmed"
	MoveStateCancelled            MoveState = "cancelled"
)

// Move is one in-flight stage transition. It holds no persisted state:
// nothing is written until the move is confirmed.
type Move struct {
	Token        string    `json:"token"`
	ItemID       string    `json:"itemId"`
	FromStageKey string    `json:"fromStageKey"`
	ToStageKey   string    `json:"toStageKey"`
	Percent      int       `json:"percent"`
	Prompt       string    `json:"prompt"`
	State        MoveState `json:"state"`
	RequestedAt  time.Time `json:"requestedAt"`
}

// MoveResult is returned from a confirmed move: the updated item plus the
// recomputed aggregates for the source and target stages.
type MoveResult struct {
	Item *workitem.WorkItem `json:"task"`
	From Aggregate          `json:"from"`
	To   Aggregate          `json:"to"`
}

// Coordinator orchestrates stage transitions: it validates a requested
// move, parks it awaiting confirmation, and on confirmation applies the
// persistence write, the index move, and the aggregate refresh as one unit.
// A persistence failure is treated exactly like a cancellation: the index
// is resynchronized from the record store and nothing else changes.
//
// Moves are serialized per item; a stage deletion and a move apply are
// mutually exclusive so a delete can never race an item into a dying stage.
type Coordinator struct {
	catalog *stage.Catalog
	index   *workitem.Index
	repo    workitem.Repository
	guard   *DeletionGuard
	mapper  ProgressMapper
	bus     *eventbus.Bus

	mu      sync.Mutex       // guards pending and byItem
	pending map[string]*Move // confirmation token -> move
	byItem  map[string]string

	applyMu sync.Mutex // serializes confirmed applies and stage removals
}

func NewCoordinator(
	catalog *stage.Catalog,
	index *workitem.Index,
	repo workitem.Repository,
	guard *DeletionGuard,
	bus *eventbus.Bus,
) *Coordinator {
	return &Coordinator{
		catalog: catalog,
		index:   index,
		repo:    repo,
		guard:   guard,
		bus:     bus,
		pending: make(map[string]*Move),
		byItem:  make(map[string]string),
	}
}

// ProposeMove validates a requested move and parks it awaiting
// confirmation. The proposed percentage is computed here so the
// confirmation prompt and the eventual write agree.
func (c *Coordinator) ProposeMove(ctx context.Context, itemID, targetStageKey string) (*Move, error) {
	item, err := c.repo.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}

	fromStage, ok := c.catalog.Resolve(item.StageKey)
	if !ok {
		return nil, unknownStageError(item.StageKey)
	}
	toStage, ok := c.catalog.Resolve(targetStageKey)
	if !ok {
		return nil, unknownStageError(targetStageKey)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if token, ok := c.byItem[item.ID]; ok {
		return nil, cerr.NewError(cerr.Aborted, "a move for this task is already awaiting confirmation", nil).
			AddMeta("token", token)
	}

	move := &Move{
		Token:        ulid.Make().String(),
		ItemID:       item.ID,
		FromStageKey: fromStage.Key,
		ToStageKey:   toStage.Key,
		Percent:      c.percentFor(toStage.Key, fromStage.Key, item),
		Prompt:       fmt.Sprintf("Move %q to %s?", item.Title, toStage.Name),
		State:        MoveStateAwaitingConfirmation,
		RequestedAt:  time.Now(),
	}
	c.pending[move.Token] = move
	c.byItem[item.ID] = move.Token
	return move, nil
}

// ConfirmMove applies a pending move: the item's stage and progress are
// persisted, the index is updated, and both stage aggregates are
// recomputed. A persistence failure leaves the caller-visible state
// identical to a cancellation.
func (c *Coordinator) ConfirmMove(ctx context.Context, token string) (*MoveResult, error) {
	move, err := c.takePending(token)
	if err != nil {
		return nil, err
	}

	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	// The stage set may have changed while the move sat awaiting
	// confirmation.
	toStage, ok := c.catalog.Resolve(move.ToStageKey)
	if !ok {
		c.resyncItem(ctx, move.ItemID)
		return nil, unknownStageError(move.ToStageKey)
	}

	item, err := c.repo.Get(ctx, move.ItemID)
	if err != nil {
		c.resyncItem(ctx, move.ItemID)
		return nil, err
	}

	fromKey := item.StageKey
	item.StageKey = toStage.Key
	item.Progress = move.Percent
	item.UpdatedAt = time.Now()
	if err := c.repo.Update(ctx, item); err != nil {
		// Treated as cancelled: the index must not diverge from the store.
		c.resyncItem(ctx, move.ItemID)
		return nil, cerr.NewError(cerr.Internal, "failed to save the move; nothing was changed", err)
	}

	move.State = MoveStateConfirmed
	c.index.Upsert(item)

	c.bus.PublishNew(eventbus.EventTypeTaskStageChanged, item.ID, map[string]string{
		"from":    fromKey,
		"to":      item.StageKey,
		"percent": fmt.Sprintf("%d", item.Progress),
	})

	return &MoveResult{
		Item: item,
		From: ComputeAggregate(c.index, move.FromStageKey),
		To:   ComputeAggregate(c.index, move.ToStageKey),
	}, nil
}

// CancelMove discards a pending move. The item's index entry is re-derived
// from the authoritative record so any optimistic caller state can be
// restored from the response of a subsequent read, never from the client's
// own assumption.
func (c *Coordinator) CancelMove(ctx context.Context, token string) error {
	move, err := c.takePending(token)
	if err != nil {
		return err
	}
	move.State = MoveStateCancelled
	c.resyncItem(ctx, move.ItemID)
	return nil
}

// RemoveStage deletes a stage, gated by the deletion guard. The guard check
// runs under the same lock that serializes confirmed moves, so a move
// cannot slip an item into the stage between the check and the removal.
func (c *Coordinator) RemoveStage(ctx context.Context, stageID string) error {
	c.applyMu.Lock()
	defer c.applyMu.Unlock()

	err := c.catalog.Remove(ctx, stageID, func(s *stage.Stage) error {
		decision := c.guard.CanDelete(s)
		if !decision.Allowed {
			return cerr.NewError(cerr.FailedPrecondition, decision.Reason, nil).
				AddMeta("blockingCount", decision.BlockingCount).
				AddMeta("stageName", decision.StageName)
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.bus.PublishNew(eventbus.EventTypeStageDeleted, stageID, nil)
	return nil
}

// percentFor applies the progress rule: fixed table for the target, else
// the table entry for the source, else the item's current percentage so a
// custom-to-custom move keeps inherited progress.
func (c *Coordinator) percentFor(toKey, fromKey string, item *workitem.WorkItem) int {
	if pct, ok := c.mapper.Lookup(toKey); ok {
		return pct
	}
	if pct, ok := c.mapper.Lookup(fromKey); ok {
		return pct
	}
	return item.Progress
}

func (c *Coordinator) takePending(token string) (*Move, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	move, ok := c.pending[token]
	if !ok {
		return nil, cerr.NewError(cerr.NotFound, "no pending move for this token", nil)
	}
	delete(c.pending, token)
	delete(c.byItem, move.ItemID)
	return move, nil
}

// resyncItem restores the index entry for one item from the authoritative
// record store.
func (c *Coordinator) resyncItem(ctx context.Context, itemID string) {
	item, err := c.repo.Get(ctx, itemID)
	if err != nil {
		c.index.Remove(itemID)
		return
	}
	c.index.Upsert(item)
}

func unknownStageError(stageKey string) error {
	return cerr.NewError(cerr.FailedPrecondition,
		fmt.Sprintf("unknown stage %q; refresh the stage list and retry", stageKey), nil).
		AddMeta("stageKey", stageKey)
}
