package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Decode is the validated configuration of one kmz-decode run.
type Decode struct {
	Archive        string
	Output         string // CSV path; empty means <archive>.csv
	Save           bool
	VerticalOffset float64
	Layout         domain.Layout
	Verbose        bool
	Tell           bool
}

// Validate requires the archive to be an existing regular file.
func (d Decode) Validate() error {
	info, err := os.Stat(d.Archive)
	if err != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("%w: the file %q does not exist or is not a valid file", domain.ErrConfiguration, d.Archive)
	}
	if _, err := domain.ParseLayout(string(d.Layout)); err != nil {
		return err
	}
	return nil
}

// CSVPath is where the table is written.
func (d Decode) CSVPath() string {
	if d.Output != "" {
		return d.Output
	}
	return d.Archive + ".csv"
}

// Settings renders the --Tell dump.
func (d Decode) Settings() string {
	var b strings.Builder
	fmt.Fprintf(&b, "KMZ:     %s\n", d.Archive)
	fmt.Fprintf(&b, "CSV:     %s\n", d.CSVPath())
	fmt.Fprintf(&b, "ARP:     %g\n", d.VerticalOffset)
	fmt.Fprintf(&b, "Layout:  %s\n", string(d.Layout))
	fmt.Fprintf(&b, "Save:    %t\n", d.Save)
	fmt.Fprintf(&b, "Verbose: %t\n", d.Verbose)
	return b.String()
}
