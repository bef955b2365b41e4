// Package palette assigns display colors to technicians for one render.
package palette

// Color is a named display color with its hex value.
type Color struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

// Colors is the fixed palette, cycled in order.
var Colors = []Color{
	{"indigo", "#6366F1"},
	{"purple", "#A855F7"},
	{"blue", "#3B82F6"},
	{"teal", "#14B8A6"},
	{"emerald", "#10B981"},
	{"orange", "#F97316"},
	{"pink", "#EC4899"},
	{"cyan", "#06B6D4"},
	{"yellow", "#EAB308"},
	{"gray", "#6B7280"},
}

// Assign maps each technician id to a palette color by its first position
// in ids. The mapping is rebuilt on every call, so the same ordering always
// yields the same colors.
func Assign(ids []string) map[string]Color {
	out := make(map[string]Color, len(ids))
	next := 0
	for _, id := range ids {
		if _, ok := out[id]; ok {
			continue
		}
		out[id] = Colors[next%len(Colors)]
		next++
	}
	return out
}
