package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe lengths for scene files and the px/pt bridge to the font engine.
// The canvas works in millimetres and is rasterized at 1 dot per millimetre, so one canvas unit
// is one output pixel and font sizes cross into points with the mm↔pt factors below.

// Unit represents the original unit of a value as written in a scene file.
type Unit int

const (
	UnitNone    Unit = iota // unit-less numbers
	UnitPX                  // layout pixels (canvas units)
	UnitPT                  // points
	UnitPercent             // percent of the surface
	UnitDeg                 // degrees
)

// Conversion constants between pt and mm (= px on the canvas).
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// PxToPt converts a pixel length (e.g. a font size) into points for canvas font faces.
func PxToPt(px float64) float64 { return px * MmToPt }

// PtToPx converts points into pixels.
func PtToPx(pt float64) float64 { return pt * PtToMm }

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	case UnitDeg:
		return "deg"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// String formats the length the way it is written in scene files, e.g. "12pt".
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + UnitToString(l.Unit)
}

// PX converts the length to layout pixels. Percent/degree/unit-less values are returned as-is.
func (l Length) PX() float64 {
	if l.Unit == UnitPT {
		return l.Value * PtToMm
	}
	return l.Value
}

// PT converts the length to points.
func (l Length) PT() float64 {
	if l.Unit == UnitPT {
		return l.Value
	}
	if l.Unit == UnitPX || l.Unit == UnitNone {
		return l.Value * MmToPt
	}
	return l.Value
}

// ParseLength parses a scene length string preserving its unit.
func ParseLength(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"%", UnitPercent}, {"deg", UnitDeg}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
