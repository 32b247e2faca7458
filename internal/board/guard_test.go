package board

import (
	"fmt"
	"testing"
	"time"

	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
)

func guardStage(key, name string) *stage.Stage {
	return &stage.Stage{ID: "stage-" + key, Key: key, Name: name}
}

func indexWith(t *testing.T, stageKeys ...string) *workitem.Index {
	t.Helper()
	ix := workitem.NewIndex()
	for i, key := range stageKeys {
		ix.Upsert(&workitem.WorkItem{
			ID:        fmt.Sprintf("item-%d", i),
			Title:     "item",
			StageKey:  key,
			CreatedAt: time.Now(),
		})
	}
	return ix
}

func TestCanDeleteEmptyStage(t *testing.T) {
	g := NewDeletionGuard(indexWith(t))
	d := g.CanDelete(guardStage("review", "Review"))
	if !d.Allowed {
		t.Fatalf("empty stage should be deletable: %+v", d)
	}
	if d.BlockingCount != 0 || d.Reason != "" {
		t.Errorf("allowed decision carries refusal fields: %+v", d)
	}
}

func TestCanDeleteBlockedSingular(t *testing.T) {
	g := NewDeletionGuard(indexWith(t, "review"))
	d := g.CanDelete(guardStage("review", "Review"))
	if d.Allowed {
		t.Fatal("stage with one item must not be deletable")
	}
	if d.BlockingCount != 1 {
		t.Errorf("BlockingCount = %d, want 1", d.BlockingCount)
	}
	want := `Cannot delete stage "Review": 1 task is still in it. Move it to another stage first.`
	if d.Reason != want {
		t.Errorf("Reason = %q, want %q", d.Reason, want)
	}
}

func TestCanDeleteBlockedPlural(t *testing.T) {
	g := NewDeletionGuard(indexWith(t, "review", "review"))
	d := g.CanDelete(guardStage("review", "Review"))
	if d.Allowed {
		t.Fatal("stage with items must not be deletable")
	}
	if d.BlockingCount != 2 {
		t.Errorf("BlockingCount = %d, want 2", d.BlockingCount)
	}
	want := `Cannot delete stage "Review": 2 tasks are still in it. Move them to another stage first.`
	if d.Reason != want {
		t.Errorf("Reason = %q, want %q", d.Reason, want)
	}
}

func TestCanDeleteCountsItemsKeyedByDisplayName(t *testing.T) {
	// Items sometimes carry the display name instead of the key; both count.
	ix := indexWith(t, "codereview", "Peer Review")
	g := NewDeletionGuard(ix)
	d := g.CanDelete(guardStage("codereview", "Peer Review"))
	if d.Allowed {
		t.Fatal("expected deletion to be blocked")
	}
	if d.BlockingCount != 2 {
		t.Errorf("BlockingCount = %d, want 2", d.BlockingCount)
	}
}

func TestCanDeleteNameMatchesKeyNoDoubleCount(t *testing.T) {
	ix := indexWith(t, "review")
	g := NewDeletionGuard(ix)
	d := g.CanDelete(guardStage("review", "Review"))
	if d.BlockingCount != 1 {
		t.Errorf("item counted twice when name normalizes to key: %d", d.BlockingCount)
	}
}
