package board

import (
	"github.com/kshimizu/taskboard/internal/stage"
	"github.com/kshimizu/taskboard/internal/workitem"
)

// Aggregate is the derived per-stage projection: item count plus hour sums.
// It is always recomputed from the index and never persisted.
type Aggregate struct {
	StageKey       string  `json:"stageKey"`
	Count          int     `json:"count"`
	EstimatedHours float64 `json:"estimatedHours"`
	ActualHours    float64 `json:"actualHours"`
}

// ComputeAggregate projects one stage's current totals from the index.
func ComputeAggregate(ix *workitem.Index, stageKey string) Aggregate {
	agg := Aggregate{StageKey: stage.NormalizeKey(stageKey)}
	for _, w := range ix.ItemsIn(stageKey, workitem.SortByCreatedAt) {
		agg.Count++
		agg.EstimatedHours += w.EstimatedHours
		agg.ActualHours += w.ActualHours
	}
	return agg
}

// ComputeAggregates projects totals for every stage in the catalog, in
// catalog order.
func ComputeAggregates(ix *workitem.Index, catalog *stage.Catalog) []Aggregate {
	stages := catalog.List()
	aggs := make([]Aggregate, len(stages))
	for i, s := range stages {
		aggs[i] = ComputeAggregate(ix, s.Key)
	}
	return aggs
}
