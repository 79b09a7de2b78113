package models

// CategoryColors is the fixed palette categories pick from
var CategoryColors = []string{
	"#EF4444", // red
	"#F97316", // orange
	"#EAB308", // yellow
	"#22C55E", // green
	"#06B6D4", // cyan
	"#3B82F6", // blue
	"#8B5CF6", // purple
	"#EC4899", // pink
}

// TagColors is the fixed palette tags pick from
var TagColors = []string{
	"#6366F1", // indigo
	"#8B5CF6", // violet
	"#A855F7", // purple
	"#D946EF", // fuchsia
	"#EC4899", // pink
	"#F43F5E", // rose
	"#14B8A6", // teal
	"#10B981", // emerald
}

// PriorityColors maps each priority to its display color
var PriorityColors = map[Priority]string{
	PriorityHigh:   "#EF4444",
	PriorityMedium: "#F59E0B",
	PriorityLow:    "#22C55E",
}

// InPalette reports whether color is one of palette's entries
func InPalette(palette []string, color string) bool {
	for _, c := range palette {
		if c == color {
			return true
		}
	}
	return false
}
