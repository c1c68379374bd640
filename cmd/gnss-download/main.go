// Command gnss-download harvests raw .T02/.T04 logs from a Trimble GNSS
// receiver's web file server, optionally converted by the receiver into
// RINEX, Hatanaka or Google Earth formats, or into CSV tables.
//
// Usage:
//
//	gnss-download 10.1.1.20 RINEXZ --RINEX 3.04 --Recursive --Output ./Downloads
//	gnss-download 10.1.1.20 CSV --ARP 1.8 --Max 10
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	kafkaadapter "github.com/couchcryptid/gnss-harvest/internal/adapter/kafka"
	"github.com/couchcryptid/gnss-harvest/internal/adapter/receiver"
	"github.com/couchcryptid/gnss-harvest/internal/config"
	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/harvest"
	"github.com/couchcryptid/gnss-harvest/internal/kmz"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
	"github.com/couchcryptid/gnss-harvest/internal/pipeline"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	h := config.DefaultHarvest()

	cmd := &cobra.Command{
		Use:   "gnss-download IP Format",
		Short: "Trimble GNSS Download.",
		Long:  "Trimble GNSS Download.\n\nFormats:\n" + formatHelp(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := domain.ParseFormat(args[1])
			if err != nil {
				return err
			}
			h.IP = args[0]
			h.Format = format
			return run(cmd.Context(), h)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.StringVar(&h.RinexVersion, "RINEX", h.RinexVersion, "RINEX version (allowed: "+strings.Join(domain.RinexVersions, ", ")+")")
	f.IntVarP(&h.Port, "Port", "P", h.Port, "HTTP port of the GNSS receiver")
	f.StringVarP(&h.Base, "Base", "B", h.Base, "Base directory to download from")
	f.StringVarP(&h.Output, "Output", "O", h.Output, "Directory to download to")
	f.IntVarP(&h.Max, "Max", "M", 0, "Max number of downloads, 0 for unlimited")
	f.BoolVarP(&h.Recursive, "Recursive", "R", false, "Download from the base directory and below")
	f.BoolVarP(&h.Delete, "Delete", "D", false, "Delete file after downloading (not implemented)")
	f.BoolVarP(&h.Clobber, "Clobber", "C", false, "Overwrite existing files")
	f.BoolVarP(&h.Quiet, "Quiet", "Q", false, "Do not show progress")
	f.BoolVar(&h.NoRename, "NoRename", false, "Do not rename files to the name the browser would download")
	f.BoolVar(&h.DryRun, "DryRun", false, "List what would be downloaded without fetching")
	f.BoolVarP(&h.Verbose, "Verbose", "V", false, "Verbose logging")
	f.Float64VarP(&h.VerticalOffset, "ARP", "A", 0, "ARP offset subtracted from heights in CSV files")
	f.BoolVarP(&h.Tell, "Tell", "T", false, "Show settings in use")

	return cmd
}

func run(ctx context.Context, h config.Harvest) error {
	if err := config.LoadDotenv(); err != nil {
		return err
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level := cfg.LogLevel
	if h.Verbose {
		level = "debug"
	}
	logger := observability.NewLogger(os.Stderr, level, cfg.LogFormat)
	metrics := observability.NewMetrics()

	if h.Tell {
		fmt.Fprint(os.Stderr, h.Settings())
	}
	if err := h.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := receiver.NewClient(h.ServerURL(), cfg.HTTPTimeout, logger)

	opts := harvest.DownloaderOptions{ChunkSize: cfg.ChunkSize}
	if !h.Quiet && isTerminal(os.Stdout) {
		opts.Progress = newProgressBar
	}
	downloader := harvest.NewDownloader(client, harvest.NewResolver(client, logger), logger, metrics, opts)
	decoder := kmz.NewDecoder(kmz.Options{VerticalOffset: h.VerticalOffset}, logger)

	var publisher pipeline.Publisher
	if cfg.EventsEnabled {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		publisher = writer
		logger.Info("file events enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(harvest.NewHarvester(client, logger, metrics), downloader, decoder, publisher, logger, metrics)
	sum, runErr := p.Run(ctx, h)

	if sum.Found > 0 {
		fmt.Fprintf(os.Stderr, "Found %d file(s), downloaded %d, skipped %d.\n", sum.Found, sum.Downloaded, sum.Skipped)
	}
	if sum.LimitReached {
		fmt.Fprintf(os.Stderr, "Max Downloads %d reached.\n", h.Max)
	}

	if cfg.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Error("write metrics textfile failed", "path", cfg.MetricsTextfile, "error", err)
		}
	}
	return runErr
}

func newProgressBar(total int64, label string) harvest.Progress {
	return progressbar.NewOptions64(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func formatHelp() string {
	var b strings.Builder
	for _, f := range domain.Formats() {
		fmt.Fprintf(&b, "  %s\n", f)
	}
	return b.String()
}
