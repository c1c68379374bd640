package domain

import "fmt"

// CSV column names shared by both layouts.
const (
	ColTime       = "Time"
	ColLat        = "Lat"
	ColLon        = "Lon"
	ColHgt        = "Hgt"
	ColType       = "Type"
	ColEastSigma  = "East Sigma"
	ColNorthSigma = "North Sigma"
	ColUpSigma    = "Up Sigma"
	ColHPrecision = "H Precision"
	ColVPrecision = "V Precision"
	ColMode       = "Mode"
	ColPDOP       = "PDOP"
	ColTracked    = "Tracked"
	ColUsed       = "Used"
	ColCorrAge    = "Corr Age"
	ColTrackAngle = "Track Angle"
	ColVelocity   = "Velocity"
	ColWeek       = "Week"
	ColUTC        = "UTC"
)

// Layout is a published CSV column layout.
type Layout string

const (
	// LayoutSigma reports precision as east, north and up sigma.
	LayoutSigma Layout = "sigma"
	// LayoutLegacy reports precision as horizontal and vertical values.
	LayoutLegacy Layout = "legacy"
)

var layoutColumns = map[Layout][]string{
	LayoutSigma: {
		ColTime, ColLat, ColLon, ColHgt, ColType,
		ColEastSigma, ColNorthSigma, ColUpSigma,
		ColMode, ColPDOP, ColTracked, ColUsed, ColCorrAge,
		ColTrackAngle, ColVelocity, ColWeek, ColUTC,
	},
	LayoutLegacy: {
		ColTime, ColLat, ColLon, ColHgt, ColType,
		ColHPrecision, ColVPrecision,
		ColMode, ColPDOP, ColTracked, ColUsed, ColCorrAge,
		ColTrackAngle, ColVelocity, ColWeek, ColUTC,
	},
}

// ParseLayout validates a layout name.
func ParseLayout(s string) (Layout, error) {
	l := Layout(s)
	if _, ok := layoutColumns[l]; !ok {
		return "", fmt.Errorf("%w: unknown CSV layout %q (allowed: sigma, legacy)", ErrConfiguration, s)
	}
	return l, nil
}

// Columns returns the fixed header for the layout.
func (l Layout) Columns() []string {
	cols := layoutColumns[l]
	out := make([]string, len(cols))
	copy(out, cols)
	return out
}

// FileRecord is one CSV row keyed by column name.
type FileRecord map[string]string

// Row renders the record in the layout's column order. Missing columns are empty.
func (r FileRecord) Row(l Layout) []string {
	cols := layoutColumns[l]
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = r[c]
	}
	return row
}
