package config

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Harvest is the validated configuration of one gnss-download run. It is
// built once from the command line and passed by value.
type Harvest struct {
	IP             string
	Port           int
	Format         domain.OutputFormat
	RinexVersion   string
	Base           string
	Output         string
	Max            int // 0 means unlimited
	Recursive      bool
	Delete         bool // accepted but not implemented by the receiver API
	Clobber        bool
	Quiet          bool
	NoRename       bool
	DryRun         bool
	Verbose        bool
	VerticalOffset float64
	Tell           bool
}

// DefaultHarvest returns the settings used when a flag is not given.
func DefaultHarvest() Harvest {
	return Harvest{
		Port:         80,
		RinexVersion: domain.DefaultRinexVersion,
		Base:         "Internal",
		Output:       "./Downloads",
	}
}

// Validate checks the settings before any network activity happens.
func (h Harvest) Validate() error {
	if strings.TrimSpace(h.IP) == "" {
		return fmt.Errorf("%w: receiver IP is required", domain.ErrConfiguration)
	}
	if h.Port < 1 || h.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", domain.ErrConfiguration, h.Port)
	}
	if h.Max < 0 {
		return fmt.Errorf("%w: max downloads must not be negative", domain.ErrConfiguration)
	}
	if h.Output == "" {
		return fmt.Errorf("%w: output directory is required", domain.ErrConfiguration)
	}
	if _, err := domain.ParseFormat(string(h.Format)); err != nil {
		return err
	}
	if _, err := h.Format.Spec(h.RinexVersion); err != nil {
		return err
	}
	return nil
}

// ServerURL is the receiver's scheme and authority.
func (h Harvest) ServerURL() string {
	return fmt.Sprintf("http://%s:%d", h.IP, h.Port)
}

// ListingPath is the directory the harvest starts from.
func (h Harvest) ListingPath() string {
	return "/download/" + strings.TrimPrefix(h.Base, "/")
}

// Rename maps --NoRename onto the domain policy.
func (h Harvest) Rename() domain.RenamePolicy {
	if h.NoRename {
		return domain.RenameFixed
	}
	return domain.RenameFromServer
}

// Overwrite maps --Clobber onto the domain policy.
func (h Harvest) Overwrite() domain.OverwritePolicy {
	if h.Clobber {
		return domain.Clobber
	}
	return domain.SkipExisting
}

// Settings renders the --Tell dump.
func (h Harvest) Settings() string {
	maxDownloads := "unlimited"
	if h.Max > 0 {
		maxDownloads = fmt.Sprint(h.Max)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "IP:        %s\n", h.IP)
	fmt.Fprintf(&b, "Port:      %d\n", h.Port)
	fmt.Fprintf(&b, "Format:    %s\n", string(h.Format))
	fmt.Fprintf(&b, "Base:      %s\n", h.Base)
	fmt.Fprintf(&b, "Output:    %s\n", h.Output)
	fmt.Fprintf(&b, "RINEX V:   %s\n", h.RinexVersion)
	fmt.Fprintf(&b, "Max:       %s\n", maxDownloads)
	fmt.Fprintf(&b, "Recursive: %t\n", h.Recursive)
	fmt.Fprintf(&b, "Delete:    %t\n", h.Delete)
	fmt.Fprintf(&b, "Clobber:   %t\n", h.Clobber)
	fmt.Fprintf(&b, "NoRename:  %t\n", h.NoRename)
	fmt.Fprintf(&b, "Quiet:     %t\n", h.Quiet)
	fmt.Fprintf(&b, "DryRun:    %t\n", h.DryRun)
	fmt.Fprintf(&b, "Verbose:   %t\n", h.Verbose)
	fmt.Fprintf(&b, "ARP:       %g\n", h.VerticalOffset)
	b.WriteString("\n")
	return b.String()
}
