package workitem

import (
	"context"
	"sort"
	"sync"

	"github.com/kshimizu/taskboard/internal/stage"
)

// SortKey selects the ordering of ItemsIn results.
type SortKey int

const (
	// SortByCreatedAt orders items by creation time ascending.
	SortByCreatedAt SortKey = iota
	// SortByDueDate orders items by due date ascending; items without a
	// due date sort last.
	SortByDueDate
)

// Index is the in-memory view of work items grouped by normalized stage
// key. It is a rebuildable cache over the authoritative repository, never a
// source of truth.
type Index struct {
	mu      sync.RWMutex
	byStage map[string]map[string]*WorkItem
	byID    map[string]*WorkItem
}

func NewIndex() *Index {
	return &Index{
		byStage: make(map[string]map[string]*WorkItem),
		byID:    make(map[string]*WorkItem),
	}
}

// Rebuild replaces the index contents from the authoritative records.
func (ix *Index) Rebuild(ctx context.Context, repo Repository) error {
	items, err := repo.List(ctx, "", "")
	if err != nil {
		return err
	}

	byStage := make(map[string]map[string]*WorkItem)
	byID := make(map[string]*WorkItem, len(items))
	for _, w := range items {
		key := stage.NormalizeKey(w.StageKey)
		if byStage[key] == nil {
			byStage[key] = make(map[string]*WorkItem)
		}
		byStage[key][w.ID] = w
		byID[w.ID] = w
	}

	ix.mu.Lock()
	ix.byStage = byStage
	ix.byID = byID
	ix.mu.Unlock()
	return nil
}

// Upsert adds or replaces one item, moving it between stage buckets when
// its StageKey changed.
func (ix *Index) Upsert(w *WorkItem) {
	key := stage.NormalizeKey(w.StageKey)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if prev, ok := ix.byID[w.ID]; ok {
		prevKey := stage.NormalizeKey(prev.StageKey)
		if prevKey != key {
			delete(ix.byStage[prevKey], w.ID)
		}
	}
	if ix.byStage[key] == nil {
		ix.byStage[key] = make(map[string]*WorkItem)
	}
	ix.byStage[key][w.ID] = w
	ix.byID[w.ID] = w
}

// Remove drops one item from the index.
func (ix *Index) Remove(itemID string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	w, ok := ix.byID[itemID]
	if !ok {
		return
	}
	delete(ix.byStage[stage.NormalizeKey(w.StageKey)], itemID)
	delete(ix.byID, itemID)
}

// Get returns the indexed copy of an item.
func (ix *Index) Get(itemID string) (*WorkItem, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	w, ok := ix.byID[itemID]
	return w, ok
}

// MoveItem reassigns an item between stage buckets. A move where both keys
// normalize to the same stage is a legal no-op and never double-counts.
func (ix *Index) MoveItem(itemID, fromStageKey, toStageKey string) {
	from := stage.NormalizeKey(fromStageKey)
	to := stage.NormalizeKey(toStageKey)

	ix.mu.Lock()
	defer ix.mu.Unlock()

	w, ok := ix.byID[itemID]
	if !ok {
		return
	}
	if from == to {
		return
	}
	delete(ix.byStage[from], itemID)
	if ix.byStage[to] == nil {
		ix.byStage[to] = make(map[string]*WorkItem)
	}
	ix.byStage[to][itemID] = w
	w.StageKey = toStageKey
}

// CountIn returns the number of items currently in the stage.
func (ix *Index) CountIn(stageKey string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byStage[stage.NormalizeKey(stageKey)])
}

// ItemsIn returns the stage's items in a stable order chosen by sortBy.
func (ix *Index) ItemsIn(stageKey string, sortBy SortKey) []*WorkItem {
	ix.mu.RLock()
	bucket := ix.byStage[stage.NormalizeKey(stageKey)]
	items := make([]*WorkItem, 0, len(bucket))
	for _, w := range bucket {
		items = append(items, w)
	}
	ix.mu.RUnlock()

	switch sortBy {
	case SortByDueDate:
		sort.SliceStable(items, func(i, j int) bool {
			di, dj := items[i].DueDate, items[j].DueDate
			switch {
			case di == nil && dj == nil:
				return items[i].CreatedAt.Before(items[j].CreatedAt)
			case di == nil:
				return false
			case dj == nil:
				return true
			default:
				return di.Before(*dj)
			}
		})
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		})
	}
	return items
}
