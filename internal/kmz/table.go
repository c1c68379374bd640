package kmz

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Table is one placemark's attribute table keyed by column name. Values
// still carry their units until Normalize runs.
type Table map[string]string

// labels maps the receiver's table labels to CSV columns, per layout.
// Labels not listed are dropped.
var labels = map[domain.Layout]map[string]string{
	domain.LayoutSigma: {
		"UTC":         domain.ColUTC,
		"Time":        domain.ColTime,
		"Week":        domain.ColWeek,
		"Type":        domain.ColType,
		"Mode":        domain.ColMode,
		"PDOP":        domain.ColPDOP,
		"Corr Age":    domain.ColCorrAge,
		"Used":        domain.ColUsed,
		"Track":       domain.ColTracked,
		"East":        domain.ColEastSigma,
		"North":       domain.ColNorthSigma,
		"Hgt":         domain.ColHgt,
		"Velocity":    domain.ColVelocity,
		"Track Angle": domain.ColTrackAngle,
	},
	domain.LayoutLegacy: {
		"UTC":         domain.ColUTC,
		"Time":        domain.ColTime,
		"Week":        domain.ColWeek,
		"Type":        domain.ColType,
		"Mode":        domain.ColMode,
		"PDOP":        domain.ColPDOP,
		"Corr Age":    domain.ColCorrAge,
		"Used":        domain.ColUsed,
		"Track":       domain.ColTracked,
		"H Prec":      domain.ColHPrecision,
		"V Prec":      domain.ColVPrecision,
		"Hgt":         domain.ColHgt,
		"Velocity":    domain.ColVelocity,
		"Track Angle": domain.ColTrackAngle,
	},
}

// unitSuffixes are stripped from the named columns by Normalize.
var unitSuffixes = map[string]string{
	domain.ColEastSigma:  "m",
	domain.ColNorthSigma: "m",
	domain.ColUpSigma:    "m",
	domain.ColHPrecision: "m",
	domain.ColVPrecision: "m",
	domain.ColCorrAge:    "s",
	domain.ColTrackAngle: "°",
	domain.ColVelocity:   "km/h",
	domain.ColTime:       " secs",
}

// ParseTable extracts the two-cell rows of an HTML description. The first
// cell is the label, the second its value. In the sigma layout the second
// "Hgt" row is the vertical sigma and is stored as Up Sigma. Any other
// repeated label keeps its first value.
func ParseTable(html string, layout domain.Layout) (Table, error) {
	allowed, ok := labels[layout]
	if !ok {
		return nil, fmt.Errorf("%w: unknown CSV layout %q", domain.ErrConfiguration, string(layout))
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("%w: description table: %v", domain.ErrParse, err)
	}

	t := Table{}
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() != 2 {
			return
		}
		col, ok := allowed[strings.TrimSpace(cells.Eq(0).Text())]
		if !ok {
			return
		}
		value := strings.TrimSpace(cells.Eq(1).Text())

		if _, seen := t[col]; seen {
			if col == domain.ColHgt && layout == domain.LayoutSigma {
				t[domain.ColUpSigma] = value
			}
			return
		}
		t[col] = value
	})
	return t, nil
}

// Normalize strips unit suffixes and applies the vertical offset to the
// height, which must then be numeric.
func (t Table) Normalize(verticalOffset float64) error {
	for col, suffix := range unitSuffixes {
		if v, ok := t[col]; ok {
			t[col] = strings.TrimSpace(strings.TrimSuffix(v, suffix))
		}
	}

	if v, ok := t[domain.ColHgt]; ok {
		h, err := offsetHeight(strings.TrimSuffix(v, "m"), verticalOffset)
		if err != nil {
			return err
		}
		t[domain.ColHgt] = h
	}
	return nil
}

// MergeCoordinates applies a KML "x,y,z" triple. Anything other than three
// components is ignored.
func (t Table) MergeCoordinates(coords string, verticalOffset float64) error {
	parts := strings.Split(strings.TrimSpace(coords), ",")
	if len(parts) != 3 {
		return nil
	}
	h, err := offsetHeight(parts[2], verticalOffset)
	if err != nil {
		return err
	}
	t[domain.ColLat] = strings.TrimSpace(parts[0])
	t[domain.ColLon] = strings.TrimSpace(parts[1])
	t[domain.ColHgt] = h
	return nil
}

// Record converts the table into a CSV row value.
func (t Table) Record() domain.FileRecord {
	r := make(domain.FileRecord, len(t))
	for k, v := range t {
		r[k] = v
	}
	return r
}

func offsetHeight(raw string, offset float64) (string, error) {
	h, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", fmt.Errorf("%w: height %q is not a number", domain.ErrParse, raw)
	}
	return strconv.FormatFloat(h-offset, 'f', -1, 64), nil
}
