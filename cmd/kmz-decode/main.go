// Command kmz-decode converts a Trimble Google Earth (KMZ) export into a CSV
// table with one row per point placemark.
//
// Usage:
//
//	kmz-decode R750_202409301600.kmz --ARP 1.8 --Save
package main

import (
	"fmt"
	"os"

	"github.com/couchcryptid/gnss-harvest/internal/config"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/kmz"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		d      config.Decode
		layout string
	)

	cmd := &cobra.Command{
		Use:   "kmz-decode KMZ_File",
		Short: "Trimble KMZ to CSV.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			d.Archive = args[0]
			d.Layout = domain.Layout(layout)
			return run(d)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.BoolVarP(&d.Save, "Save", "S", false, "Save the KML file from the KMZ next to it")
	f.Float64VarP(&d.VerticalOffset, "ARP", "A", 0, "ARP offset subtracted from heights")
	f.StringVarP(&d.Output, "Output", "O", "", "CSV file to write (default <KMZ_File>.csv)")
	f.StringVar(&layout, "Layout", string(domain.LayoutSigma), "CSV column layout: sigma or legacy")
	f.BoolVarP(&d.Verbose, "Verbose", "V", false, "Verbose logging")
	f.BoolVarP(&d.Tell, "Tell", "T", false, "Show settings in use")

	return cmd
}

func run(d config.Decode) error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if d.Verbose {
		level = "debug"
	}
	logger := observability.NewLogger(os.Stderr, level, cfg.LogFormat)

	if d.Tell {
		fmt.Fprint(os.Stderr, d.Settings())
	}
	if err := d.Validate(); err != nil {
		return err
	}

	decoder := kmz.NewDecoder(kmz.Options{
		VerticalOffset: d.VerticalOffset,
		SaveMarkup:     d.Save,
		Layout:         d.Layout,
	}, logger)

	res, err := decoder.Decode(d.Archive, d.CSVPath())
	if err != nil {
		return err
	}
	if d.Verbose {
		fmt.Fprintf(os.Stderr, "Wrote %d row(s) to %s\n", res.Rows, d.CSVPath())
	}
	return nil
}
