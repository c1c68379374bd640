package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
)

// rawExtensions are the receiver log types that are harvested.
var rawExtensions = []string{".T02", ".T04"}

// Lister returns the hyperlink targets of a directory listing page.
type Lister interface {
	Links(ctx context.Context, dirPath string) ([]string, error)
}

// Harvester walks the receiver's listing tree.
type Harvester struct {
	lister  Lister
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewHarvester creates a Harvester reading listings through l.
func NewHarvester(l Lister, logger *slog.Logger, metrics *observability.Metrics) *Harvester {
	return &Harvester{lister: l, logger: logger, metrics: metrics}
}

type linkKind int

const (
	linkFile linkKind = iota
	linkDerived
	linkParent
	linkDir
)

// classify decides what a listing link points at, relative to the directory
// path it was found on.
func classify(href, dirPath string) linkKind {
	for _, ext := range rawExtensions {
		if strings.HasSuffix(href, ext) {
			return linkFile
		}
	}
	for _, ext := range rawExtensions {
		if strings.Contains(href, ext+"?") {
			return linkDerived
		}
	}
	if len(href) <= len(dirPath) {
		return linkParent
	}
	return linkDir
}

// listing is one directory on the walk stack.
type listing struct {
	dir   string
	links []string
	next  int
}

// Harvest returns the paths of all raw logs under basePath. Sub-directories
// are descended only when recursive is set. A listing that leads back to a
// directory already walked fails with domain.ErrListingCycle.
func (h *Harvester) Harvest(ctx context.Context, basePath string, recursive bool) ([]string, error) {
	visited := make(map[string]bool)

	root, err := h.open(ctx, basePath, visited)
	if err != nil {
		return nil, err
	}

	var files []string
	stack := []*listing{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		top := stack[len(stack)-1]
		if top.next == len(top.links) {
			stack = stack[:len(stack)-1]
			continue
		}
		href := top.links[top.next]
		top.next++

		switch classify(href, top.dir) {
		case linkFile:
			target, err := resolve(top.dir, href)
			if err != nil {
				h.logger.Warn("skipping unparseable link", "href", href, "error", err)
				continue
			}
			files = append(files, target)
			h.metrics.FilesDiscovered.Inc()
		case linkDerived, linkParent:
			continue
		case linkDir:
			if !recursive {
				continue
			}
			sub, err := resolve(top.dir, href)
			if err != nil {
				h.logger.Warn("skipping unparseable link", "href", href, "error", err)
				continue
			}
			h.logger.Debug("descending into directory", "dir", sub)
			next, err := h.open(ctx, sub, visited)
			if err != nil {
				return nil, err
			}
			stack = append(stack, next)
		}
	}

	return files, nil
}

func (h *Harvester) open(ctx context.Context, dir string, visited map[string]bool) (*listing, error) {
	key := normalize(dir)
	if visited[key] {
		return nil, fmt.Errorf("%w: %s listed twice", domain.ErrListingCycle, dir)
	}
	visited[key] = true

	links, err := h.lister.Links(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	h.metrics.ListingsFetched.Inc()
	return &listing{dir: dir, links: links}, nil
}

// resolve interprets href relative to the directory path it appeared on.
func resolve(dir, href string) (string, error) {
	base, err := url.Parse(dir)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func normalize(dir string) string {
	if u, err := url.Parse(dir); err == nil {
		dir = u.Path
	}
	return path.Clean("/" + dir)
}
