package workitem

import (
	"testing"
	"time"

	"github.com/kshimizu/taskboard/pkg/cerr"
)

func validItem() *WorkItem {
	return &WorkItem{
		ID:          "01TEST",
		Title:       "Fix the login flow",
		Description: "The login form drops the session cookie on redirect.",
		Priority:    PriorityHigh,
		StageKey:    "todo",
	}
}

func TestValidate(t *testing.T) {
	w := validItem()
	if err := w.Validate(nil); err != nil {
		t.Fatalf("valid item rejected: %v", err)
	}
}

func TestValidateTitleTooShort(t *testing.T) {
	w := validItem()
	w.Title = "ab"
	err := w.Validate(nil)
	if !cerr.IsCode(err, cerr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestValidateTitleWhitespaceOnly(t *testing.T) {
	w := validItem()
	w.Title = "   a   "
	if err := w.Validate(nil); err == nil {
		t.Fatal("whitespace-padded short title accepted")
	}
}

func TestValidateDescriptionTooShort(t *testing.T) {
	w := validItem()
	w.Description = "too short"
	err := w.Validate(nil)
	if !cerr.IsCode(err, cerr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestValidateEmptyDescriptionAllowed(t *testing.T) {
	w := validItem()
	w.Description = ""
	if err := w.Validate(nil); err != nil {
		t.Fatalf("empty description rejected: %v", err)
	}
}

func TestValidateDefaultPriority(t *testing.T) {
	w := validItem()
	w.Priority = ""
	if err := w.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Priority != PriorityMedium {
		t.Errorf("expected default priority Medium, got %s", w.Priority)
	}
}

func TestValidateInvalidPriority(t *testing.T) {
	w := validItem()
	w.Priority = "Critical"
	if err := w.Validate(nil); !cerr.IsCode(err, cerr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestValidateDueDateWithinProject(t *testing.T) {
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	due := end.AddDate(0, 0, -1)

	w := validItem()
	w.DueDate = &due
	if err := w.Validate(&end); err != nil {
		t.Fatalf("due date within project end rejected: %v", err)
	}
}

func TestValidateDueDateExceedsProjectEnd(t *testing.T) {
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	due := end.AddDate(0, 0, 1)

	w := validItem()
	w.DueDate = &due
	if err := w.Validate(&end); !cerr.IsCode(err, cerr.InvalidArgument) {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}
}

func TestValidateDueDateNoProjectBoundary(t *testing.T) {
	due := time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	w := validItem()
	w.DueDate = &due
	if err := w.Validate(nil); err != nil {
		t.Fatalf("due date without project boundary rejected: %v", err)
	}
}

func TestValidateCleansTags(t *testing.T) {
	w := validItem()
	w.Tags = []string{" backend ", "", "auth", "   "}
	if err := w.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Tags) != 2 || w.Tags[0] != "backend" || w.Tags[1] != "auth" {
		t.Errorf("tags not cleaned: %v", w.Tags)
	}
}

func TestValidateDedupesAssignees(t *testing.T) {
	w := validItem()
	w.Assignees = []string{"alice", "bob", "alice"}
	if err := w.Validate(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.Assignees) != 2 || w.Assignees[0] != "alice" || w.Assignees[1] != "bob" {
		t.Errorf("assignees not deduped: %v", w.Assignees)
	}
}
