// Package kmz converts the Google Earth archives exported by a Trimble
// receiver into CSV tables, one row per point placemark.
//
// The archive holds a single KML document. Each point placemark carries its
// position in Point/coordinates and its solution details in an HTML table
// embedded in the description. Line and folder placemarks have no
// description and produce no row.
package kmz
