package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a harvest
// run. Each Metrics owns its registry so a run can be exported as a textfile.
type Metrics struct {
	registry *prometheus.Registry

	ListingsFetched prometheus.Counter
	FilesDiscovered prometheus.Counter

	// Downloads by outcome={downloaded,skipped,failed,dry_run}.
	Downloads        *prometheus.CounterVec
	DownloadBytes    prometheus.Counter
	DownloadDuration prometheus.Histogram

	// Conversions by outcome={converted,skipped,failed}.
	Conversions *prometheus.CounterVec
	CSVRows     prometheus.Counter

	EventsPublished prometheus.Counter
	EventErrors     prometheus.Counter
	LastRunSuccess  prometheus.Gauge
}

// NewMetrics creates and registers all harvest metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		ListingsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "listings_fetched_total",
			Help:      "Directory listing pages fetched from the receiver.",
		}),
		FilesDiscovered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "files_discovered_total",
			Help:      "Raw log files found in the harvested listings.",
		}),
		Downloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "downloads_total",
			Help:      "Files processed by outcome.",
		}, []string{"outcome"}),
		DownloadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "download_bytes_total",
			Help:      "Bytes written to disk by downloads.",
		}),
		DownloadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gnss_harvest",
			Name:      "download_duration_seconds",
			Help:      "Duration of a single file download.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}),
		Conversions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "csv_conversions_total",
			Help:      "KMZ to CSV conversions by outcome.",
		}, []string{"outcome"}),
		CSVRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "csv_rows_total",
			Help:      "Placemark rows written to CSV files.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "events_published_total",
			Help:      "File events published to Kafka.",
		}),
		EventErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gnss_harvest",
			Name:      "event_errors_total",
			Help:      "File events that could not be published.",
		}),
		LastRunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gnss_harvest",
			Name:      "last_run_success",
			Help:      "1 when the last run finished without a fatal error, 0 otherwise.",
		}),
	}

	m.registry.MustRegister(
		m.ListingsFetched,
		m.FilesDiscovered,
		m.Downloads,
		m.DownloadBytes,
		m.DownloadDuration,
		m.Conversions,
		m.CSVRows,
		m.EventsPublished,
		m.EventErrors,
		m.LastRunSuccess,
	)

	return m
}

// Gatherer exposes the run's registry.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the registry in the format read by node_exporter's
// textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
