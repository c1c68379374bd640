package domain

import "errors"

// Error kinds. Components wrap these with context so callers can classify
// failures with errors.Is.
var (
	// ErrConfiguration is an invalid or missing setting. No network activity follows.
	ErrConfiguration = errors.New("configuration error")
	// ErrTransport is a connection failure or non-success HTTP status.
	ErrTransport = errors.New("transport error")
	// ErrArchive is a KMZ that is not a zip or carries no KML document.
	ErrArchive = errors.New("archive error")
	// ErrParse is a malformed KML document or description table.
	ErrParse = errors.New("parse error")
	// ErrIntegrity is a received byte count that differs from Content-Length.
	ErrIntegrity = errors.New("integrity error")
	// ErrListingCycle is a directory listing that links back to a directory already walked.
	ErrListingCycle = errors.New("directory listing cycle")
)
