package stage

import (
	"testing"

	"pgregory.net/rapid"
)

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Review", "review"},
		{"spaces collapse", "In Progress", "inprogress"},
		{"mixed case", "On Hold", "onhold"},
		{"hyphens dropped", "code-review", "codereview"},
		{"underscores dropped", "qa_check", "qacheck"},
		{"leading and trailing space", "  Done  ", "done"},
		{"tabs", "to\tdo", "todo"},
		{"empty", "", ""},
		{"only separators", " -_ ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeKey(tt.in); got != tt.want {
				t.Errorf("NormalizeKey(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeKeyIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		in := rapid.String().Draw(t, "in")
		once := NormalizeKey(in)
		twice := NormalizeKey(once)
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	})
}

func TestNormalizeKeyEquivalentSpellings(t *testing.T) {
	// All spellings of the same stage name must land on one key.
	spellings := []string{"In Progress", "in progress", "INPROGRESS", "in-progress", "in_progress"}
	for _, s := range spellings {
		if got := NormalizeKey(s); got != "inprogress" {
			t.Errorf("NormalizeKey(%q) = %q, want %q", s, got, "inprogress")
		}
	}
}

func TestDefaultStagesOrder(t *testing.T) {
	stages := DefaultStages()
	if len(stages) != 7 {
		t.Fatalf("expected 7 default stages, got %d", len(stages))
	}
	wantKeys := []string{"todo", "pending", "inprogress", "onhold", "review", "completed", "cancelled"}
	for i, want := range wantKeys {
		if stages[i].Key != want {
			t.Errorf("default stage %d: got key %q, want %q", i, stages[i].Key, want)
		}
	}
	for i := 1; i < len(stages); i++ {
		if stages[i].Order <= stages[i-1].Order {
			t.Errorf("default stages not strictly ordered at index %d", i)
		}
	}
}

func TestColorHexFor(t *testing.T) {
	if got := ColorHexFor("purple"); got != "#6f42c1" {
		t.Errorf("purple hex = %q, want #6f42c1", got)
	}
	// Unknown tokens fall back to the default palette entry.
	if got := ColorHexFor("chartreuse"); got != ColorHexFor(DefaultColorName) {
		t.Errorf("unknown color did not fall back to default: %q", got)
	}
}
