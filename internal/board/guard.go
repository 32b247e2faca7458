package board

import (
	"fmt"

	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
)

// Decision is the outcome of a stage deletion-eligibility check. When
// deletion is refused, Reason carries user-presentable text with the exact
// blocking count.
type Decision struct {
	Allowed       bool   `json:"allowed"`
	BlockingCount int    `json:"blockingCount,omitempty"`
	StageName     string `json:"stageName,omitempty"`
	Reason        string `json:"reason,omitempty"`
}

// DeletionGuard blocks removal of stages that still hold work items.
type DeletionGuard struct {
	index *workitem.Index
}

func NewDeletionGuard(index *workitem.Index) *DeletionGuard {
	return &DeletionGuard{index: index}
}

// CanDelete counts the items referencing the stage by normalized key and,
// defensively, by normalized display name, since some callers key items by
// name rather than key.
func (g *DeletionGuard) CanDelete(s *stage.Stage) Decision {
	count := g.index.CountIn(s.Key)
	if stage.NormalizeKey(s.Name) != stage.NormalizeKey(s.Key) {
		count += g.index.CountIn(s.Name)
	}
	if count == 0 {
		return Decision{Allowed: true, StageName: s.Name}
	}
	return Decision{
		Allowed:       false,
		BlockingCount: count,
		StageName:     s.Name,
		Reason:        blockedReason(s.Name, count),
	}
}

func blockedReason(stageName string, count int) string {
	if count == 1 {
		return fmt.Sprintf("Cannot delete stage %q: 1 task is still in it. Move it to another stage first.", stageName)
	}
	return fmt.Sprintf("Cannot delete stage %q: %d tasks are still in it. Move them to another stage first.", stageName, count)
}
