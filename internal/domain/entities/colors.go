package entities

// CardColors maps a color token to the CSS classes the canvas renders a card
// with. The token, not the classes, is what gets persisted.
var CardColors = map[string]string{
	"slate":   "bg-slate-100 border-slate-200",
	"red":     "bg-red-100 border-red-200",
	"orange":  "bg-orange-100 border-orange-200",
	"amber":   "bg-amber-100 border-amber-200",
	"yellow":  "bg-yellow-100 border-yellow-200",
	"lime":    "bg-lime-100 border-lime-200",
	"green":   "bg-green-100 border-green-200",
	"emerald": "bg-emerald-100 border-emerald-200",
	"teal":    "bg-teal-100 border-teal-200",
	"cyan":    "bg-cyan-100 border-cyan-200",
	"sky":     "bg-sky-100 border-sky-200",
}

// LineColors maps a color token to the hex value used for connection strokes.
var LineColors = map[string]string{
	"slate":   "#64748b",
	"red":     "#ef4444",
	"orange":  "#f97316",
	"amber":   "#f59e0b",
	"yellow":  "#eab308",
	"lime":    "#84cc16",
	"green":   "#22c55e",
	"emerald": "#10b981",
	"teal":    "#14b8a6",
	"cyan":    "#06b6d4",
	"sky":     "#0ea5e9",
}

// IsCardColor reports whether the token is a known card color.
func IsCardColor(token string) bool {
	_, ok := CardColors[token]
	return ok
}
