package observability

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_IndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.Downloads.WithLabelValues("downloaded").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(a.Downloads.WithLabelValues("downloaded")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.Downloads.WithLabelValues("downloaded")))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.FilesDiscovered.Add(5)
	m.DownloadBytes.Add(2048)
	m.LastRunSuccess.Set(1)

	path := filepath.Join(t.TempDir(), "gnss.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "gnss_harvest_files_discovered_total 5")
	assert.Contains(t, string(data), "gnss_harvest_download_bytes_total 2048")
	assert.Contains(t, string(data), "gnss_harvest_last_run_success 1")
}

func TestNewLogger_Formats(t *testing.T) {
	var buf bytes.Buffer
	NewLogger(&buf, "debug", "json").Debug("probe", "url", "http://x")
	assert.Contains(t, buf.String(), `"msg":"probe"`)
	assert.Contains(t, buf.String(), `"url":"http://x"`)

	buf.Reset()
	NewLogger(&buf, "info", "text").Debug("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	NewLogger(&buf, "nonsense", "text").Info("shown")
	assert.Contains(t, buf.String(), "msg=shown")
}
