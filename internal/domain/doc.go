// Package domain models the files served by a Trimble GNSS receiver's web
// interface and the tables decoded from its Google Earth exports.
//
// # Receiver File Server
//
// The receiver exposes its internal storage under /download:
//
//	http://<ip>:<port>/download/<base>            directory listing (HTML)
//	http://<ip>:<port>/download/<base>/<file>     raw log, served as-is
//	.../<file>?format=<param>&Ver=<version>       log converted on the fly
//
// Raw logs use the .T02 and .T04 extensions. Listings also link to
// converted copies of each log (".T04?format=..."); those are derivatives
// and never harvested. The receiver names converted files itself and
// announces the name in a Content-Disposition header.
//
// # Formats
//
// Each [OutputFormat] maps to a "format" query value. RINEX-family formats
// also carry "Ver". The zipped RINEX download switches to the mixed
// observation variant for 3.03 and 3.04:
//
//	RINEX      RNX
//	RINEXZ     Zipped-RNX-MIX (3.03, 3.04) | Zipped-RNX
//	HATANAKA   RNX-COMP
//	HATANAKAZ  Zipped-RNX-COMP
//	KML        KMZ-Lines
//	KMP, CSV   KMZ-LinesPoints
//	T0X        (raw, no query)
//
// # Placemark Tables
//
// A KMZ point placemark carries an HTML table of two-cell rows ("label",
// "value"). Values keep their units ("1.2m", "12°", "3 km/h", " secs").
// The height label appears twice in the sigma layout: first the ellipsoidal
// height, then the vertical sigma, stored as [ColUpSigma].
package domain
