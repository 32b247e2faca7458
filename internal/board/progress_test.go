package board

import "testing"

func TestProgressLookup(t *testing.T) {
	var m ProgressMapper

	tests := []struct {
		key  string
		want int
		ok   bool
	}{
		{"todo", 0, true},
		{"pending", 20, true},
		{"inprogress", 50, true},
		{"completed", 100, true},
		{"In Progress", 50, true}, // spelling variants normalize
		{"COMPLETED", 100, true},
		{"review", 0, false},
		{"onhold", 0, false},
		{"qa", 0, false},
	}
	for _, tt := range tests {
		got, ok := m.Lookup(tt.key)
		if ok != tt.ok || got != tt.want {
			t.Errorf("Lookup(%q) = (%d, %v), want (%d, %v)", tt.key, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPercentFor(t *testing.T) {
	var m ProgressMapper

	tests := []struct {
		name string
		to   string
		from string
		want int
	}{
		{"known target wins", "completed", "todo", 100},
		{"known target over known source", "inprogress", "completed", 50},
		{"custom target inherits source", "qa", "inprogress", 50},
		{"custom target from completed", "qa", "completed", 100},
		{"both custom", "qa", "review", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.PercentFor(tt.to, tt.from); got != tt.want {
				t.Errorf("PercentFor(%q, %q) = %d, want %d", tt.to, tt.from, got, tt.want)
			}
		})
	}
}
