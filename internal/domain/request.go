package domain

import (
	"fmt"
	"path"
)

// RenamePolicy controls where the local filename comes from.
type RenamePolicy int

const (
	// RenameFromServer asks the receiver for the name a browser would save under.
	RenameFromServer RenamePolicy = iota
	// RenameFixed keeps the name derived from the source path.
	RenameFixed
)

// OverwritePolicy controls what happens when the local file already exists.
type OverwritePolicy int

const (
	// SkipExisting leaves existing files alone and does not fetch them again.
	SkipExisting OverwritePolicy = iota
	// Clobber always downloads and replaces.
	Clobber
)

// DownloadRequest describes one file to fetch from the receiver.
type DownloadRequest struct {
	Server       string // scheme and authority, e.g. http://10.0.0.5:80
	Path         string // path of the raw file on the receiver, e.g. /download/Internal/x.T04
	Format       OutputFormat
	RinexVersion string
	Rename       RenamePolicy
	Overwrite    OverwritePolicy
}

// Spec resolves the format spec for the request, applying the archive naming rule.
func (r DownloadRequest) Spec() (FormatSpec, RenamePolicy, error) {
	spec, err := r.Format.Spec(r.RinexVersion)
	if err != nil {
		return FormatSpec{}, 0, err
	}
	rename := r.Rename
	if r.Format.ForcesServerName() {
		rename = RenameFromServer
	}
	return spec, rename, nil
}

// URL is the full download URL including the format query.
func (r DownloadRequest) URL(spec FormatSpec) string {
	return r.Server + r.Path + spec.Query
}

// SourceName is the last element of the source path.
func (r DownloadRequest) SourceName() string {
	return path.Base(r.Path)
}

func (r DownloadRequest) String() string {
	return fmt.Sprintf("%s%s (%s)", r.Server, r.Path, string(r.Format))
}
