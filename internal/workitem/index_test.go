package workitem

import (
	"testing"
	"time"
)

func newItem(id, stageKey string, createdAt time.Time) *WorkItem {
	return &WorkItem{
		ID:        id,
		Title:     "Task " + id,
		StageKey:  stageKey,
		CreatedAt: createdAt,
	}
}

func TestIndexUpsertAndCount(t *testing.T) {
	ix := NewIndex()
	now := time.Now()

	ix.Upsert(newItem("a", "todo", now))
	ix.Upsert(newItem("b", "todo", now))
	ix.Upsert(newItem("c", "inprogress", now))

	if got := ix.CountIn("todo"); got != 2 {
		t.Errorf("CountIn(todo) = %d, want 2", got)
	}
	if got := ix.CountIn("inprogress"); got != 1 {
		t.Errorf("CountIn(inprogress) = %d, want 1", got)
	}
	if got := ix.CountIn("completed"); got != 0 {
		t.Errorf("CountIn(completed) = %d, want 0", got)
	}
}

func TestIndexCountNormalizesKeys(t *testing.T) {
	ix := NewIndex()
	ix.Upsert(newItem("a", "In Progress", time.Now()))

	// All spellings address the same bucket.
	for _, key := range []string{"inprogress", "in progress", "IN-PROGRESS"} {
		if got := ix.CountIn(key); got != 1 {
			t.Errorf("CountIn(%q) = %d, want 1", key, got)
		}
	}
}

func TestIndexUpsertMovesBetweenBuckets(t *testing.T) {
	ix := NewIndex()
	w := newItem("a", "todo", time.Now())
	ix.Upsert(w)

	moved := *w
	moved.StageKey = "completed"
	ix.Upsert(&moved)

	if got := ix.CountIn("todo"); got != 0 {
		t.Errorf("source bucket still holds item: count %d", got)
	}
	if got := ix.CountIn("completed"); got != 1 {
		t.Errorf("target bucket missing item: count %d", got)
	}
}

func TestIndexMoveItemSameStageNoop(t *testing.T) {
	ix := NewIndex()
	ix.Upsert(newItem("a", "todo", time.Now()))

	// Differently-spelled same stage must not double-count.
	ix.MoveItem("a", "todo", "To Do")
	if got := ix.CountIn("todo"); got != 1 {
		t.Errorf("same-stage move changed count: %d", got)
	}
}

func TestIndexMoveItemUnknownID(t *testing.T) {
	ix := NewIndex()
	ix.MoveItem("ghost", "todo", "completed")
	if got := ix.CountIn("completed"); got != 0 {
		t.Errorf("move of unknown item created entries: %d", got)
	}
}

func TestIndexRemove(t *testing.T) {
	ix := NewIndex()
	ix.Upsert(newItem("a", "todo", time.Now()))
	ix.Remove("a")

	if got := ix.CountIn("todo"); got != 0 {
		t.Errorf("removed item still counted: %d", got)
	}
	if _, ok := ix.Get("a"); ok {
		t.Error("removed item still resolvable by ID")
	}
	// Removing twice is harmless.
	ix.Remove("a")
}

func TestIndexItemsInSortedByCreatedAt(t *testing.T) {
	ix := NewIndex()
	base := time.Now()
	ix.Upsert(newItem("newer", "todo", base.Add(time.Hour)))
	ix.Upsert(newItem("older", "todo", base))

	items := ix.ItemsIn("todo", SortByCreatedAt)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "older" || items[1].ID != "newer" {
		t.Errorf("wrong order: %s, %s", items[0].ID, items[1].ID)
	}
}

func TestIndexItemsInSortedByDueDate(t *testing.T) {
	ix := NewIndex()
	base := time.Now()
	soon := base.Add(24 * time.Hour)
	later := base.Add(72 * time.Hour)

	noDue := newItem("nodue", "todo", base)
	first := newItem("first", "todo", base.Add(time.Minute))
	first.DueDate = &soon
	second := newItem("second", "todo", base.Add(2*time.Minute))
	second.DueDate = &later

	ix.Upsert(noDue)
	ix.Upsert(second)
	ix.Upsert(first)

	items := ix.ItemsIn("todo", SortByDueDate)
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].ID != "first" || items[1].ID != "second" || items[2].ID != "nodue" {
		t.Errorf("wrong order: %s, %s, %s (items without due dates must sort last)",
			items[0].ID, items[1].ID, items[2].ID)
	}
}
