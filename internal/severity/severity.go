// Package severity defines the ordinal health scale shared by every disk
// evaluator.
//
// A Severity is exchanged with consumers as its numeric level. Ordering is
// done by rank instead of level so the donor marker sorts between healthy and
// replicating while keeping a level outside the 0..5 range.
package severity

import (
	"fmt"
	"math"
	"strings"
)

// Severity is a health level. The zero value is Unavailable.
type Severity int

const (
	Unavailable   Severity = 0
	Healthy       Severity = 1
	Replicating   Severity = 2
	DegradedMinor Severity = 3
	DegradedMajor Severity = 4
	Critical      Severity = 5
	Donor         Severity = 6
)

// Flag is a color-coded status reported by the storage sources.
type Flag string

const (
	FlagGrey     Flag = "Grey"
	FlagGreen    Flag = "Green"
	FlagBlue     Flag = "Blue"
	FlagYellow   Flag = "Yellow"
	FlagOrange   Flag = "Orange"
	FlagRed      Flag = "Red"
	FlagDarkGrey Flag = "DarkGrey"
)

// Space usage thresholds, lower bound inclusive.
const (
	SpaceWarningPercent  = 85
	SpaceCriticalPercent = 95
)

// ordered lists every severity from least to most severe.
var ordered = []Severity{Unavailable, Healthy, Donor, Replicating, DegradedMinor, DegradedMajor, Critical}

// Valid reports whether s is one of the defined levels.
func (s Severity) Valid() bool {
	return s >= Unavailable && s <= Donor
}

// Rank returns the position of s in the severity order. Unknown levels rank
// as unavailable.
func (s Severity) Rank() int {
	switch s {
	case Healthy:
		return 1
	case Donor:
		return 2
	case Replicating:
		return 3
	case DegradedMinor:
		return 4
	case DegradedMajor:
		return 5
	case Critical:
		return 6
	default:
		return 0
	}
}

// Level returns the numeric value exchanged with consumers.
func (s Severity) Level() int {
	return int(s)
}

func (s Severity) String() string {
	switch s {
	case Unavailable:
		return "unavailable"
	case Healthy:
		return "healthy"
	case Replicating:
		return "replicating"
	case DegradedMinor:
		return "degraded-minor"
	case DegradedMajor:
		return "degraded-major"
	case Critical:
		return "critical"
	case Donor:
		return "donor"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Color returns the flag used to render s.
func (s Severity) Color() Flag {
	switch s {
	case Healthy:
		return FlagGreen
	case Replicating:
		return FlagBlue
	case DegradedMinor:
		return FlagYellow
	case DegradedMajor:
		return FlagOrange
	case Critical:
		return FlagRed
	case Donor:
		return FlagDarkGrey
	default:
		return FlagGrey
	}
}

// Compare returns -1, 0 or 1 when a is less, equally or more severe than b.
func Compare(a, b Severity) int {
	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra < rb:
		return -1
	case ra > rb:
		return 1
	default:
		return 0
	}
}

// Max returns the most severe of values, or Unavailable when empty.
func Max(values ...Severity) Severity {
	result := Unavailable
	for _, v := range values {
		if Compare(v, result) > 0 {
			result = v
		}
	}
	return result
}

// Cap returns s limited to at most limit.
func Cap(s, limit Severity) Severity {
	if Compare(s, limit) > 0 {
		return limit
	}
	return s
}

// FromLevel converts a numeric level back to a Severity.
func FromLevel(level int) (Severity, bool) {
	s := Severity(level)
	if !s.Valid() {
		return Unavailable, false
	}
	return s, true
}

// FromFlag maps a source color flag onto the scale. Absent or unknown flags
// are unavailable.
func FromFlag(flag Flag) Severity {
	switch Flag(strings.TrimSpace(string(flag))) {
	case FlagGreen:
		return Healthy
	case FlagBlue:
		return Replicating
	case FlagYellow:
		return DegradedMinor
	case FlagOrange:
		return DegradedMajor
	case FlagRed:
		return Critical
	case FlagDarkGrey:
		return Donor
	default:
		return Unavailable
	}
}

// ForSpaceUsage grades a usage percentage. Unknown percentages are healthy.
func ForSpaceUsage(percent float64) Severity {
	switch {
	case math.IsNaN(percent):
		return Healthy
	case percent >= SpaceCriticalPercent:
		return Critical
	case percent >= SpaceWarningPercent:
		return DegradedMinor
	default:
		return Healthy
	}
}

// Info describes one level of the scale.
type Info struct {
	Label string   `json:"label"`
	Level Severity `json:"level"`
	Rank  int      `json:"rank"`
	Color Flag     `json:"color"`
}

// Scale returns every level ordered from least to most severe.
func Scale() []Info {
	scale := make([]Info, 0, len(ordered))
	for _, s := range ordered {
		scale = append(scale, Info{Label: s.String(), Level: s, Rank: s.Rank(), Color: s.Color()})
	}
	return scale
}
