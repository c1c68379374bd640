package kmz

import (
	"archive/zip"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
)

// Options tune a Decoder.
type Options struct {
	// VerticalOffset is subtracted from every height, typically the antenna
	// reference point height.
	VerticalOffset float64
	// SaveMarkup writes the embedded KML next to the archive before parsing.
	SaveMarkup bool
	Layout     domain.Layout
}

// Result describes one converted archive.
type Result struct {
	Rows       int
	Placemarks int
	MarkupPath string
}

// Decoder converts KMZ archives into CSV tables.
type Decoder struct {
	opts   Options
	logger *slog.Logger
}

// NewDecoder creates a Decoder. An empty layout selects domain.LayoutSigma.
func NewDecoder(opts Options, logger *slog.Logger) *Decoder {
	if opts.Layout == "" {
		opts.Layout = domain.LayoutSigma
	}
	return &Decoder{opts: opts, logger: logger}
}

// Decode writes one CSV row per described placemark of archivePath to
// csvPath. Any failure aborts the whole archive and csvPath is left
// untouched.
func (d *Decoder) Decode(archivePath, csvPath string) (Result, error) {
	name, data, err := readMarkup(archivePath)
	if err != nil {
		return Result{}, err
	}

	var res Result
	if d.opts.SaveMarkup {
		res.MarkupPath = filepath.Join(filepath.Dir(archivePath), filepath.Base(name))
		if err := os.WriteFile(res.MarkupPath, data, 0o644); err != nil {
			return Result{}, fmt.Errorf("save markup %s: %w", res.MarkupPath, err)
		}
		d.logger.Debug("saved markup", "path", res.MarkupPath)
	}

	placemarks, err := parseMarkup(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", archivePath, err)
	}
	res.Placemarks = len(placemarks)

	rows := make([][]string, 0, len(placemarks))
	for i, p := range placemarks {
		if p.Description == nil {
			continue
		}
		record, err := d.record(p)
		if err != nil {
			return Result{}, fmt.Errorf("%s: placemark %d: %w", archivePath, i+1, err)
		}
		rows = append(rows, record.Row(d.opts.Layout))
	}

	if err := writeCSV(csvPath, d.opts.Layout.Columns(), rows); err != nil {
		return Result{}, err
	}
	res.Rows = len(rows)

	d.logger.Info("converted archive", "path", archivePath, "csv", csvPath, "rows", res.Rows)
	return res, nil
}

func (d *Decoder) record(p placemark) (domain.FileRecord, error) {
	t, err := ParseTable(*p.Description, d.opts.Layout)
	if err != nil {
		return nil, err
	}
	if err := t.Normalize(d.opts.VerticalOffset); err != nil {
		return nil, err
	}
	if coords, ok := p.coordinates(); ok {
		if err := t.MergeCoordinates(coords, d.opts.VerticalOffset); err != nil {
			return nil, err
		}
	}
	return t.Record(), nil
}

// readMarkup returns the name and content of the first .kml entry.
func readMarkup(archivePath string) (string, []byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %s is not a valid KMZ: %v", domain.ErrArchive, archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".kml") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", nil, fmt.Errorf("%w: open %s: %v", domain.ErrArchive, f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("%w: read %s: %v", domain.ErrArchive, f.Name, err)
		}
		return f.Name, data, nil
	}
	return "", nil, fmt.Errorf("%w: no KML file found in %s", domain.ErrArchive, archivePath)
}

// writeCSV writes through a temporary file in the target directory, renamed
// into place once complete.
func writeCSV(path string, header []string, rows [][]string) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create csv: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("create csv: %w", err)
	}

	w := csv.NewWriter(tmp)
	if err = w.Write(header); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if err = w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close csv: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename csv: %w", err)
	}
	return nil
}

// IsDecodeError reports whether err came from a bad archive or markup,
// as opposed to a local I/O failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, domain.ErrArchive) || errors.Is(err, domain.ErrParse)
}
