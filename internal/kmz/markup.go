package kmz

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

const kmlNamespace = "http://www.opengis.net/kml/2.2"

type placemark struct {
	Description *string `xml:"http://www.opengis.net/kml/2.2 description"`
	Point       *struct {
		Coordinates *string `xml:"http://www.opengis.net/kml/2.2 coordinates"`
	} `xml:"http://www.opengis.net/kml/2.2 Point"`
}

func (p placemark) coordinates() (string, bool) {
	if p.Point == nil || p.Point.Coordinates == nil {
		return "", false
	}
	return *p.Point.Coordinates, true
}

// parseMarkup reads the whole document and returns its placemarks in
// document order, at any nesting depth.
func parseMarkup(data []byte) ([]placemark, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var out []placemark
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed KML: %v", domain.ErrParse, err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Space != kmlNamespace || start.Name.Local != "Placemark" {
			continue
		}

		var p placemark
		if err := dec.DecodeElement(&p, &start); err != nil {
			return nil, fmt.Errorf("%w: malformed placemark: %v", domain.ErrParse, err)
		}
		out = append(out, p)
	}
	return out, nil
}
