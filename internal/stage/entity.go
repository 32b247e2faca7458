package stage

import "time"

// Stage is one column of the workflow board. Key is the stable identifier
// items reference; Name is free to change after creation, Key is not.
type Stage struct {
	ID        string    `yaml:"id" json:"id"`
	Key       string    `yaml:"key" json:"key"`
	Name      string    `yaml:"name" json:"name"`
	ColorName string    `yaml:"color_name" json:"colorName"`
	ColorHex  string    `yaml:"color_hex" json:"colorHex"`
	Order     int       `yaml:"order" json:"order"`
	CreatedAt time.Time `yaml:"created_at" json:"createdAt"`
	UpdatedAt time.Time `yaml:"updated_at" json:"updatedAt"`
}

const (
	DefaultColorName = "purple"
	DefaultColorHex  = "#6f42c1"
)

// colorPalette maps palette tokens to display hex values. Unknown tokens
// fall back to the default so a bad color never breaks rendering.
var colorPalette = map[string]string{
	"purple": "#6f42c1",
	"pink":   "#d63384",
	"blue":   "#0d6efd",
	"yellow": "#ffc107",
	"green":  "#198754",
	"orange": "#fd7e14",
	"red":    "#dc3545",
}

// ColorHexFor resolves a palette token to its hex value, falling back to the
// default palette entry for unknown tokens.
func ColorHexFor(colorName string) string {
	if hex, ok := colorPalette[colorName]; ok {
		return hex
	}
	return DefaultColorHex
}

// KnownColor reports whether colorName is a palette token.
func KnownColor(colorName string) bool {
	_, ok := colorPalette[colorName]
	return ok
}

// DefaultStages returns the fallback catalog used whenever the backing
// stage set is empty, so dependent components never see zero stages.
func DefaultStages() []*Stage {
	defs := []struct {
		key   string
		name  string
		color string
	}{
		{"todo", "Todo", "purple"},
		{"pending", "Pending", "yellow"},
		{"inprogress", "Inprogress", "blue"},
		{"onhold", "Onhold", "orange"},
		{"review", "Review", "pink"},
		{"completed", "Completed", "green"},
		{"cancelled", "Cancelled", "red"},
	}
	stages := make([]*Stage, len(defs))
	for i, d := range defs {
		stages[i] = &Stage{
			ID:        "default-" + d.key,
			Key:       d.key,
			Name:      d.name,
			ColorName: d.color,
			ColorHex:  ColorHexFor(d.color),
			Order:     i + 1,
		}
	}
	return stages
}
