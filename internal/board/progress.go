package board

import "github.com/kshimizu/taskboard/internal/stage"

// stageProgress maps well-known stage keys to completion percentages.
// User-defined stages are deliberately absent; see ProgressMapper.
var stageProgress = map[string]int{
	"todo":       0,
	"pending":    20,
	"inprogress": 50,
	"completed":  100,
}

// ProgressMapper derives an item's completion percentage from its stage.
//
// Stages outside the fixed table inherit the percentage of the stage the
// item is moving from, so a sideways move between two custom columns never
// resets progress to zero. That fallback is a contract the progress bars
// depend on, not an incidental default.
type ProgressMapper struct{}

// Lookup returns the fixed percentage for a well-known stage key.
func (ProgressMapper) Lookup(stageKey string) (int, bool) {
	pct, ok := stageProgress[stage.NormalizeKey(stageKey)]
	return pct, ok
}

// PercentFor returns the percentage for a move into stageKey from
// previousStageKey: the fixed table entry for the target, else the entry
// for the previous stage, else 0.
func (m ProgressMapper) PercentFor(stageKey, previousStageKey string) int {
	if pct, ok := m.Lookup(stageKey); ok {
		return pct
	}
	if pct, ok := m.Lookup(previousStageKey); ok {
		return pct
	}
	return 0
}
