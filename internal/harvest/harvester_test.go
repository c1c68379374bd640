package harvest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/observability"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockLister struct {
	pages map[string][]string
	calls []string
	err   error
}

func (m *mockLister) Links(_ context.Context, dirPath string) ([]string, error) {
	m.calls = append(m.calls, dirPath)
	if m.err != nil {
		return nil, m.err
	}
	links, ok := m.pages[dirPath]
	if !ok {
		return nil, errors.New("unexpected listing " + dirPath)
	}
	return links, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestHarvest_FiltersLinks(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal/": {"a.T02", "a.T02?format=x", "sub/", "../"},
	}}
	metrics := observability.NewMetrics()
	h := NewHarvester(lister, discardLogger(), metrics)

	files, err := h.Harvest(context.Background(), "/download/Internal/", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/download/Internal/a.T02"}, files)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.FilesDiscovered))
	assert.Equal(t, []string{"/download/Internal/"}, lister.calls)
}

func TestHarvest_NonRecursiveIgnoresSubdirectories(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal": {
			"/download/Internal/a.T04",
			"/download/Internal/2024/",
			"/download/Internal/b.T02",
		},
	}}
	h := NewHarvester(lister, discardLogger(), observability.NewMetrics())

	files, err := h.Harvest(context.Background(), "/download/Internal", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"/download/Internal/a.T04", "/download/Internal/b.T02"}, files)
	assert.Len(t, lister.calls, 1)
}

func TestHarvest_RecursiveIsDepthFirstInPageOrder(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal": {
			"/download/",
			"/download/Internal/a.T04",
			"/download/Internal/2024/",
			"/download/Internal/b.T02",
			"/download/Internal/b.T02?format=KMZ-Lines",
		},
		"/download/Internal/2024/": {
			"/download/Internal/",
			"/download/Internal/2024/c.T04",
			"/download/Internal/2024/09/",
			"/download/Internal/2024/d.T04",
		},
		"/download/Internal/2024/09/": {
			"/download/Internal/2024/09/e.T02",
		},
	}}
	metrics := observability.NewMetrics()
	h := NewHarvester(lister, discardLogger(), metrics)

	files, err := h.Harvest(context.Background(), "/download/Internal", true)
	require.NoError(t, err)

	want := []string{
		"/download/Internal/a.T04",
		"/download/Internal/2024/c.T04",
		"/download/Internal/2024/09/e.T02",
		"/download/Internal/2024/d.T04",
		"/download/Internal/b.T02",
	}
	if diff := cmp.Diff(want, files); diff != "" {
		t.Fatalf("harvest order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.ListingsFetched))
}

func TestHarvest_DetectsCycle(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal/": {"/download/Internal/loop/"},
		"/download/Internal/loop/": {
			"/download/Internal/loop/again/../../",
		},
	}}
	h := NewHarvester(lister, discardLogger(), observability.NewMetrics())

	_, err := h.Harvest(context.Background(), "/download/Internal/", true)
	require.ErrorIs(t, err, domain.ErrListingCycle)
}

func TestHarvest_ListingFailure(t *testing.T) {
	lister := &mockLister{err: domain.ErrTransport}
	h := NewHarvester(lister, discardLogger(), observability.NewMetrics())

	_, err := h.Harvest(context.Background(), "/download/Internal", true)
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestHarvest_SubdirectoryFailureAbortsWalk(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal": {"/download/Internal/a.T04", "/download/Internal/gone/"},
	}}
	h := NewHarvester(lister, discardLogger(), observability.NewMetrics())

	files, err := h.Harvest(context.Background(), "/download/Internal", true)
	require.Error(t, err)
	assert.Nil(t, files)
}

func TestHarvest_ContextCancelled(t *testing.T) {
	lister := &mockLister{pages: map[string][]string{
		"/download/Internal": {"/download/Internal/a.T04"},
	}}
	h := NewHarvester(lister, discardLogger(), observability.NewMetrics())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.Harvest(ctx, "/download/Internal", false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassify(t *testing.T) {
	dir := "/download/Internal"
	assert.Equal(t, linkFile, classify("/download/Internal/x.T04", dir))
	assert.Equal(t, linkDerived, classify("/download/Internal/x.T04?format=RNX&Ver=3.04", dir))
	assert.Equal(t, linkParent, classify("/download/", dir))
	assert.Equal(t, linkParent, classify(dir, dir))
	assert.Equal(t, linkDir, classify("/download/Internal/2024/", dir))
}
