package harvest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
	"github.com/jonboulle/clockwork"
)

// DefaultChunkSize bounds how much of a response body is held in memory.
const DefaultChunkSize = 10 * 1024

// partSuffix marks a download that has not completed yet.
const partSuffix = ".part"

// Fetcher opens a streaming download. The length is -1 when unknown.
type Fetcher interface {
	Open(ctx context.Context, fullURL string) (io.ReadCloser, int64, error)
}

// Progress receives every chunk written to disk.
type Progress interface {
	io.Writer
	Finish() error
}

// ProgressFactory starts a progress display for one download. total is the
// declared length, or -1 when unknown.
type ProgressFactory func(total int64, label string) Progress

// DownloaderOptions tune a Downloader. Zero values select defaults.
type DownloaderOptions struct {
	ChunkSize int
	// Progress enables progress display and the Content-Length check.
	Progress ProgressFactory
	Clock    clockwork.Clock
}

// Downloader streams one receiver file to disk at a time.
type Downloader struct {
	fetcher   Fetcher
	resolver  *Resolver
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	chunkSize int
	progress  ProgressFactory
}

// NewDownloader creates a Downloader.
func NewDownloader(f Fetcher, r *Resolver, logger *slog.Logger, metrics *observability.Metrics, opts DownloaderOptions) *Downloader {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Downloader{
		fetcher:   f,
		resolver:  r,
		logger:    logger,
		metrics:   metrics,
		clock:     opts.Clock,
		chunkSize: opts.ChunkSize,
		progress:  opts.Progress,
	}
}

// Result describes a finished download.
type Result struct {
	Path     string
	Bytes    int64
	Skipped  bool
	Duration time.Duration
}

// Target resolves the URL and local path for req without downloading it.
func (d *Downloader) Target(ctx context.Context, req domain.DownloadRequest, dir string) (fullURL, localPath string, err error) {
	spec, rename, err := req.Spec()
	if err != nil {
		return "", "", err
	}
	fullURL = req.URL(spec)
	defaultPath := filepath.Join(dir, spec.DefaultFilename(req.SourceName()))

	localPath, err = d.resolver.Resolve(ctx, fullURL, dir, defaultPath, rename)
	if err != nil {
		return "", "", err
	}
	return fullURL, localPath, nil
}

// Download fetches req into dir. With domain.SkipExisting an existing file
// is kept and nothing is fetched. A failed download never leaves a file
// behind.
func (d *Downloader) Download(ctx context.Context, req domain.DownloadRequest, dir string) (Result, error) {
	fullURL, localPath, err := d.Target(ctx, req, dir)
	if err != nil {
		d.metrics.Downloads.WithLabelValues("failed").Inc()
		return Result{}, err
	}

	if req.Overwrite == domain.SkipExisting && isFile(localPath) {
		d.logger.Debug("skipping existing file", "path", localPath, "url", fullURL)
		d.metrics.Downloads.WithLabelValues("skipped").Inc()
		return Result{Path: localPath, Skipped: true}, nil
	}

	d.logger.Info("downloading", "path", localPath, "url", fullURL)
	start := d.clock.Now()

	n, err := d.fetch(ctx, fullURL, localPath)
	if err != nil {
		d.metrics.Downloads.WithLabelValues("failed").Inc()
		return Result{}, err
	}

	elapsed := d.clock.Since(start)
	d.metrics.Downloads.WithLabelValues("downloaded").Inc()
	d.metrics.DownloadBytes.Add(float64(n))
	d.metrics.DownloadDuration.Observe(elapsed.Seconds())

	return Result{Path: localPath, Bytes: n, Duration: elapsed}, nil
}

// fetch streams fullURL into localPath via a .part file that is renamed on
// success and removed on any failure.
func (d *Downloader) fetch(ctx context.Context, fullURL, localPath string) (n int64, err error) {
	body, declared, err := d.fetcher.Open(ctx, fullURL)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmp := localPath + partSuffix
	out, err := os.Create(tmp)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			_ = out.Close()
			if rmErr := os.Remove(tmp); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
				d.logger.Error("remove partial download failed", "path", tmp, "error", rmErr)
			}
			d.logger.Warn("aborted, removed partial download", "path", localPath, "error", err)
		}
	}()

	var bar Progress
	if d.progress != nil {
		bar = d.progress(declared, fullURL)
	}

	n, err = d.copyChunks(ctx, out, body, bar)
	if err != nil {
		return n, err
	}

	if bar != nil {
		_ = bar.Finish()
		if declared > 0 && n != declared {
			return n, fmt.Errorf("%w: %s: received %d of %d bytes", domain.ErrIntegrity, fullURL, n, declared)
		}
	}

	if err = out.Close(); err != nil {
		return n, fmt.Errorf("close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, localPath); err != nil {
		return n, fmt.Errorf("rename %s: %w", tmp, err)
	}
	return n, nil
}

func (d *Downloader) copyChunks(ctx context.Context, dst io.Writer, src io.Reader, bar Progress) (int64, error) {
	buf := make([]byte, d.chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}

		nr, rerr := src.Read(buf)
		if nr > 0 {
			if _, werr := dst.Write(buf[:nr]); werr != nil {
				return written, fmt.Errorf("write: %w", werr)
			}
			written += int64(nr)
			if bar != nil {
				_, _ = bar.Write(buf[:nr])
			}
		}
		if errors.Is(rerr, io.EOF) {
			return written, nil
		}
		if rerr != nil {
			return written, fmt.Errorf("%w: read body: %w", domain.ErrTransport, rerr)
		}
	}
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
