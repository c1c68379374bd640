package domain

import (
	"fmt"
	"slices"
	"strings"
)

// OutputFormat selects what the receiver converts a raw log into before serving it.
type OutputFormat string

const (
	FormatHatanaka    OutputFormat = "HATANAKA"
	FormatHatanakaZip OutputFormat = "HATANAKAZ"
	FormatKMLLines    OutputFormat = "KML"
	FormatKMLPoints   OutputFormat = "KMP"
	FormatCSV         OutputFormat = "CSV"
	FormatRinex       OutputFormat = "RINEX"
	FormatRinexZip    OutputFormat = "RINEXZ"
	FormatRaw         OutputFormat = "T0X"
)

// RinexVersions lists the RINEX versions the receiver can produce.
var RinexVersions = []string{"2.11", "2.12", "3.00", "3.02", "3.03", "3.04"}

// DefaultRinexVersion is used when the caller does not pick one.
const DefaultRinexVersion = "3.04"

type formatInfo struct {
	description string
	rinex       bool   // requires a RINEX version
	suffix      string // default filename suffix replacing the raw extension; "%s" is the version
	serverName  bool   // always take the filename from the server
}

var formats = map[OutputFormat]formatInfo{
	FormatHatanaka:    {description: "Hatanaka RINEX, Observations File.", rinex: true, suffix: "HATANAKA.%s.obs"},
	FormatHatanakaZip: {description: "Hatanaka RINEX, All Data Zip File.", rinex: true, suffix: "HATANAKA.%s.zip"},
	FormatKMLLines:    {description: "Google Earth (line)", suffix: "lines.kmz", serverName: true},
	FormatKMLPoints:   {description: "Google Earth (line & points)", suffix: "kmz", serverName: true},
	FormatCSV:         {description: "CSV Generated from the Google Earth (line & points) file", suffix: "kmz", serverName: true},
	FormatRinex:       {description: "RINEX, Observations File.", rinex: true, suffix: "RNX.%s.obs"},
	FormatRinexZip:    {description: "RINEX, All Data Zip File.", rinex: true, suffix: "RNX.%s.zip"},
	FormatRaw:         {description: "Trimble T02 or T04 Format"},
}

// formatOrder is the order formats are listed in help output.
var formatOrder = []OutputFormat{
	FormatHatanaka, FormatHatanakaZip, FormatKMLLines, FormatKMLPoints,
	FormatCSV, FormatRinex, FormatRinexZip, FormatRaw,
}

// queryRule maps a format, and optionally a set of RINEX versions, to the
// receiver's "format" query value. Rules are matched in order; a rule with no
// versions matches any version.
type queryRule struct {
	format   OutputFormat
	versions []string
	param    string
}

var queryRules = []queryRule{
	{format: FormatRinex, param: "RNX"},
	{format: FormatRinexZip, versions: []string{"3.03", "3.04"}, param: "Zipped-RNX-MIX"},
	{format: FormatRinexZip, param: "Zipped-RNX"},
	{format: FormatHatanaka, param: "RNX-COMP"},
	{format: FormatHatanakaZip, param: "Zipped-RNX-COMP"},
	{format: FormatKMLLines, param: "KMZ-Lines"},
	{format: FormatKMLPoints, param: "KMZ-LinesPoints"},
	{format: FormatCSV, param: "KMZ-LinesPoints"},
}

// Formats returns every supported format in display order.
func Formats() []OutputFormat {
	return slices.Clone(formatOrder)
}

// ParseFormat resolves a short code, case-insensitively.
func ParseFormat(code string) (OutputFormat, error) {
	f := OutputFormat(strings.ToUpper(strings.TrimSpace(code)))
	if _, ok := formats[f]; !ok {
		codes := make([]string, len(formatOrder))
		for i, known := range formatOrder {
			codes[i] = string(known)
		}
		return "", fmt.Errorf("%w: %q is not a valid GNSS format, choose from %s",
			ErrConfiguration, code, strings.Join(codes, ", "))
	}
	return f, nil
}

func (f OutputFormat) String() string {
	return fmt.Sprintf("%s - %s", string(f), f.Description())
}

// Description is the human readable name of the format.
func (f OutputFormat) Description() string {
	return formats[f].description
}

// NeedsRinexVersion reports whether the format is part of the RINEX family.
func (f OutputFormat) NeedsRinexVersion() bool {
	return formats[f].rinex
}

// ForcesServerName reports whether the local name must come from the server.
// Archive names are not predictable from the source path.
func (f OutputFormat) ForcesServerName() bool {
	return formats[f].serverName
}

// ValidRinexVersion reports whether v is a version the receiver supports.
func ValidRinexVersion(v string) bool {
	return slices.Contains(RinexVersions, v)
}

// FormatSpec is what the download engine needs to fetch one file in a format.
type FormatSpec struct {
	Query  string // URL query, including the leading "?", or empty
	Suffix string // replaces the three-character raw extension, or empty to keep the raw name
}

// Spec resolves the query string and default filename suffix for the format.
func (f OutputFormat) Spec(rinexVersion string) (FormatSpec, error) {
	info, ok := formats[f]
	if !ok {
		return FormatSpec{}, fmt.Errorf("%w: unknown format %q", ErrConfiguration, string(f))
	}
	if info.rinex {
		if rinexVersion == "" {
			return FormatSpec{}, fmt.Errorf("%w: format %s requires a RINEX version", ErrConfiguration, string(f))
		}
		if !ValidRinexVersion(rinexVersion) {
			return FormatSpec{}, fmt.Errorf("%w: unsupported RINEX version %q (allowed: %s)",
				ErrConfiguration, rinexVersion, strings.Join(RinexVersions, ", "))
		}
	}

	param, ok := queryParam(f, rinexVersion)
	if !ok {
		return FormatSpec{}, nil
	}

	spec := FormatSpec{Query: "?format=" + param, Suffix: info.suffix}
	if info.rinex {
		spec.Query += "&Ver=" + rinexVersion
		spec.Suffix = fmt.Sprintf(info.suffix, rinexVersion)
	}
	return spec, nil
}

func queryParam(f OutputFormat, version string) (string, bool) {
	for _, r := range queryRules {
		if r.format != f {
			continue
		}
		if len(r.versions) == 0 || slices.Contains(r.versions, version) {
			return r.param, true
		}
	}
	return "", false
}

// DefaultFilename derives the local name for a source file, so "X.T02"
// becomes "X.RNX.3.04.obs" for RINEX 3.04.
func (s FormatSpec) DefaultFilename(sourceName string) string {
	if s.Suffix == "" || len(sourceName) < 3 {
		return sourceName
	}
	return sourceName[:len(sourceName)-3] + s.Suffix
}
