package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/gnss-harvest/internal/config"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/harvest"
	"github.com/couchcryptid/gnss-harvest/internal/kmz"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
	"github.com/google/uuid"
)

// Harvester lists the raw log paths under a receiver directory.
type Harvester interface {
	Harvest(ctx context.Context, basePath string, recursive bool) ([]string, error)
}

// Downloader fetches one file to a local directory.
type Downloader interface {
	Download(ctx context.Context, req domain.DownloadRequest, dir string) (harvest.Result, error)
}

// Converter turns a downloaded KMZ archive into a CSV table.
type Converter interface {
	Decode(archivePath, csvPath string) (kmz.Result, error)
}

// Publisher announces each processed file. Publishing is best-effort.
type Publisher interface {
	Publish(ctx context.Context, event domain.FileEvent) error
}

// Summary reports what a run did.
type Summary struct {
	RunID              string
	Found              int
	Downloaded         int
	Skipped            int
	DryRun             int
	Bytes              int64
	Converted          int
	ConversionsSkipped int
	ConversionFailures int
	LimitReached       bool
}

// Pipeline orchestrates the harvest, download, convert and publish steps of
// one run. Files are processed one at a time in harvest order.
type Pipeline struct {
	harvester  Harvester
	downloader Downloader
	converter  Converter
	publisher  Publisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Pipeline. The converter is only used for the CSV format and
// the publisher may be nil.
func New(h Harvester, d Downloader, c Converter, pub Publisher, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		harvester:  h,
		downloader: d,
		converter:  c,
		publisher:  pub,
		logger:     logger,
		metrics:    metrics,
	}
}

// Run harvests the configured directory and processes up to cfg.Max files.
// Configuration, transport and integrity errors abort the run. A file that
// cannot be converted to CSV is reported and the run continues.
func (p *Pipeline) Run(ctx context.Context, cfg config.Harvest) (Summary, error) {
	p.metrics.LastRunSuccess.Set(0)
	sum := Summary{RunID: uuid.NewString()}

	if err := cfg.Validate(); err != nil {
		return sum, err
	}
	if cfg.Delete {
		p.logger.Warn("delete after download is not supported by the receiver, files are left in place")
	}
	if !cfg.DryRun {
		if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
			return sum, fmt.Errorf("create output directory: %w", err)
		}
	}

	p.logger.Info("harvest started",
		"run_id", sum.RunID,
		"receiver", cfg.ServerURL(),
		"path", cfg.ListingPath(),
		"recursive", cfg.Recursive,
		"format", string(cfg.Format),
	)

	paths, err := p.harvester.Harvest(ctx, cfg.ListingPath(), cfg.Recursive)
	if err != nil {
		return sum, err
	}
	sum.Found = len(paths)
	if sum.Found == 0 {
		p.logger.Warn("no .T02 or .T04 files found", "path", cfg.ListingPath())
		p.finish(&sum)
		return sum, nil
	}

	for i, path := range paths {
		if cfg.Max > 0 && i >= cfg.Max {
			sum.LimitReached = true
			p.logger.Info("max downloads reached", "max", cfg.Max, "remaining", len(paths)-i)
			break
		}
		if err := ctx.Err(); err != nil {
			return sum, err
		}

		event, err := p.process(ctx, cfg, path, &sum)
		if err != nil {
			return sum, err
		}
		event.RunID = sum.RunID
		p.publish(ctx, event)
	}

	p.finish(&sum)
	return sum, nil
}

// process handles one harvested path and returns the event describing it.
func (p *Pipeline) process(ctx context.Context, cfg config.Harvest, path string, sum *Summary) (domain.FileEvent, error) {
	req := domain.DownloadRequest{
		Server:       cfg.ServerURL(),
		Path:         path,
		Format:       cfg.Format,
		RinexVersion: cfg.RinexVersion,
		Rename:       cfg.Rename(),
		Overwrite:    cfg.Overwrite(),
	}
	event := domain.FileEvent{
		ID:         uuid.NewString(),
		Receiver:   cfg.ServerURL(),
		SourcePath: path,
		Format:     string(cfg.Format),
	}

	if cfg.DryRun {
		spec, _, err := req.Spec()
		if err != nil {
			return event, err
		}
		p.logger.Info("dry run, not downloading", "url", req.URL(spec))
		p.metrics.Downloads.WithLabelValues(string(domain.OutcomeDryRun)).Inc()
		sum.DryRun++
		event.Outcome = domain.OutcomeDryRun
		event.CompletedAt = domain.Clock().Now()
		return event, nil
	}

	res, err := p.downloader.Download(ctx, req, cfg.Output)
	if err != nil {
		return event, fmt.Errorf("download %s: %w", path, err)
	}
	event.LocalPath = res.Path
	event.Bytes = res.Bytes
	if res.Skipped {
		sum.Skipped++
		event.Outcome = domain.OutcomeSkipped
	} else {
		sum.Downloaded++
		sum.Bytes += res.Bytes
		event.Outcome = domain.OutcomeDownloaded
	}

	if cfg.Format == domain.FormatCSV {
		if err := p.convert(res.Path, cfg.Clobber, &event, sum); err != nil {
			return event, err
		}
	}

	event.CompletedAt = domain.Clock().Now()
	return event, nil
}

func (p *Pipeline) publish(ctx context.Context, event domain.FileEvent) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("publish file event failed", "error", err, "path", event.SourcePath)
		p.metrics.EventErrors.Inc()
		return
	}
	p.metrics.EventsPublished.Inc()
}

func (p *Pipeline) finish(sum *Summary) {
	p.metrics.LastRunSuccess.Set(1)
	p.logger.Info("harvest complete",
		"run_id", sum.RunID,
		"found", sum.Found,
		"downloaded", sum.Downloaded,
		"skipped", sum.Skipped,
		"dry_run", sum.DryRun,
		"bytes", sum.Bytes,
		"converted", sum.Converted,
		"conversion_failures", sum.ConversionFailures,
		"limit_reached", sum.LimitReached,
	)
}
