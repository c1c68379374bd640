package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Prober fetches response headers for a URL without its body.
type Prober interface {
	Probe(ctx context.Context, fullURL string) (http.Header, error)
}

// Resolver picks the local path a download is saved under.
type Resolver struct {
	prober Prober
	logger *slog.Logger
}

// NewResolver creates a Resolver using p for name probes.
func NewResolver(p Prober, logger *slog.Logger) *Resolver {
	return &Resolver{prober: p, logger: logger}
}

// Resolve returns defaultPath unchanged under domain.RenameFixed. Otherwise
// it probes fullURL and, when the receiver suggests a filename, joins it to
// dir. A failed probe is returned as an error; there is no retry.
func (r *Resolver) Resolve(ctx context.Context, fullURL, dir, defaultPath string, policy domain.RenamePolicy) (string, error) {
	if policy == domain.RenameFixed {
		return defaultPath, nil
	}

	header, err := r.prober.Probe(ctx, fullURL)
	if err != nil {
		return "", fmt.Errorf("resolve filename: %w", err)
	}

	name, ok := suggestedFilename(header.Get("Content-Disposition"))
	if !ok {
		r.logger.Debug("using default filename", "url", fullURL, "path", defaultPath)
		return defaultPath, nil
	}

	r.logger.Debug("using filename from server", "url", fullURL, "filename", name)
	return filepath.Join(dir, name), nil
}

// suggestedFilename extracts the filename parameter of a Content-Disposition
// value. Receivers do not always quote it, so a plain "filename=" split is
// the fallback when the value is not a valid media type. Only the base name
// is kept.
func suggestedFilename(disposition string) (string, bool) {
	if disposition == "" {
		return "", false
	}

	var name string
	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		name = params["filename"]
	}
	if name == "" {
		i := strings.LastIndex(disposition, "filename=")
		if i < 0 {
			return "", false
		}
		name = strings.Trim(disposition[i+len("filename="):], ` "`)
	}

	name = filepath.Base(filepath.FromSlash(name))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return "", false
	}
	return name, true
}
