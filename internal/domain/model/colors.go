package model

// MutedHex is painted on elements that are outside the active highlight.
const MutedHex = "#d0d3da"

// SelectionHex marks the elements the user picked in the viewer.
const SelectionHex = "#2997ff"

// viewerStatusHex is tuned for shaded 3D surfaces.
var viewerStatusHex = map[ElementStatus]string{
	ElementStatusFail:    "#e62020",
	ElementStatusWarning: "#f59e0b",
	ElementStatusPass:    "#22c55e",
	ElementStatusBlocked: "#6b7280",
	ElementStatusLog:     "#9ca8c9",
}

// badgeStatusHex is used for flat UI badges and report output.
var badgeStatusHex = map[string]string{
	"pass":    "#10b981",
	"fail":    "#ef4444",
	"warning": "#f59e0b",
	"blocked": "#6b7280",
	"log":     "#3b82f6",
}

const badgeDefaultHex = "#9ca3af"

// ViewerHex returns the 3D color for an element status.
func ViewerHex(s ElementStatus) string {
	if hex, ok := viewerStatusHex[s]; ok {
		return hex
	}
	return MutedHex
}

// StatusHex returns the badge color for any check or element status string.
func StatusHex(status string) string {
	if hex, ok := badgeStatusHex[status]; ok {
		return hex
	}
	return badgeDefaultHex
}

// ColorMap maps element ids to hex colors.
type ColorMap map[string]string

// Equal reports whether both maps hold the same keys with the same values.
// Nil and empty maps are equal.
func (m ColorMap) Equal(other ColorMap) bool {
	if len(m) != len(other) {
		return false
	}
	for k, v := range m {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (m ColorMap) Clone() ColorMap {
	out := make(ColorMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Groups inverts the map into color → element ids.
func (m ColorMap) Groups() map[string][]string {
	out := make(map[string][]string)
	for id, hex := range m {
		out[hex] = append(out[hex], id)
	}
	return out
}
