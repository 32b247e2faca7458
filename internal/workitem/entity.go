package workitem

import (
	"fmt"
	"strings"
	"time"

	"github.com/kshimizu/taskboard/pkg/cerr"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
	// PriorityUrgent is accepted by the type but not offered by standard
	// forms.
	PriorityUrgent Priority = "Urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// WorkItem is a task card assigned to exactly one stage. StageKey must
// always resolve to a stage in the catalog; that invariant is enforced by
// the transition coordinator, never by callers mutating StageKey directly.
type WorkItem struct {
	ID             string     `yaml:"id" json:"id"`
	ProjectID      string     `yaml:"project_id,omitempty" json:"projectId,omitempty"`
	Title          string     `yaml:"title" json:"title"`
	Description    string     `yaml:"description" json:"description"`
	Priority       Priority   `yaml:"priority" json:"priority"`
	StageKey       string     `yaml:"stage_key" json:"stageKey"`
	Assignees      []string   `yaml:"assignees,omitempty" json:"assignees,omitempty"`
	DueDate        *time.Time `yaml:"due_date,omitempty" json:"dueDate,omitempty"`
	Tags           []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	EstimatedHours float64    `yaml:"estimated_hours,omitempty" json:"estimatedHours,omitempty"`
	ActualHours    float64    `yaml:"actual_hours,omitempty" json:"actualHours,omitempty"`
	Progress       int        `yaml:"progress" json:"progress"`
	CreatedAt      time.Time  `yaml:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `yaml:"updated_at" json:"updatedAt"`
}

const (
	minTitleLen       = 3
	minDescriptionLen = 10
)

// Validate checks the data-quality invariants. projectEnd, when non-nil, is
// the parent project's end boundary that DueDate may not exceed. Tags are
// cleaned in place: blank entries are discarded, order preserved.
func (w *WorkItem) Validate(projectEnd *time.Time) error {
	if len(strings.TrimSpace(w.Title)) < minTitleLen {
		return cerr.NewError(cerr.InvalidArgument, "title is too short", nil).
			AddDetail("title", fmt.Sprintf("must be at least %d characters", minTitleLen))
	}
	if w.Description != "" && len(strings.TrimSpace(w.Description)) < minDescriptionLen {
		return cerr.NewError(cerr.InvalidArgument, "description is too short", nil).
			AddDetail("description", fmt.Sprintf("must be at least %d characters", minDescriptionLen))
	}
	if w.Priority == "" {
		w.Priority = PriorityMedium
	}
	if !w.Priority.Valid() {
		return cerr.NewError(cerr.InvalidArgument, "invalid priority", nil).
			AddDetail("priority", "must be one of Low, Medium, High")
	}
	if w.DueDate != nil && projectEnd != nil && w.DueDate.After(*projectEnd) {
		return cerr.NewError(cerr.InvalidArgument, "due date exceeds project end date", nil).
			AddDetail("dueDate", fmt.Sprintf("must not be after %s", projectEnd.Format("2006-01-02")))
	}
	w.Tags = cleanTags(w.Tags)
	w.Assignees = dedupeAssignees(w.Assignees)
	return nil
}

func cleanTags(tags []string) []string {
	out := tags[:0]
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// dedupeAssignees removes duplicates while preserving display order.
func dedupeAssignees(assignees []string) []string {
	seen := make(map[string]struct{}, len(assignees))
	out := assignees[:0]
	for _, a := range assignees {
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	return out
}
