package pipeline

import (
	"os"

	"github.com/couchcryptid/gnss-harvest/internal/domain"
	"github.com/couchcryptid/gnss-harvest/internal/kmz"
)

// convert decodes a downloaded archive into "<archive>.csv". An existing CSV
// is kept unless clobber is set. Archive and markup errors are recorded on
// the event and do not stop the run; anything else does.
func (p *Pipeline) convert(archivePath string, clobber bool, event *domain.FileEvent, sum *Summary) error {
	csvPath := archivePath + ".csv"
	event.CSVPath = csvPath

	if !clobber {
		if info, err := os.Stat(csvPath); err == nil && info.Mode().IsRegular() {
			p.logger.Debug("csv exists, skipping conversion", "path", csvPath)
			p.metrics.Conversions.WithLabelValues("skipped").Inc()
			sum.ConversionsSkipped++
			return nil
		}
	}

	res, err := p.converter.Decode(archivePath, csvPath)
	if err != nil {
		p.metrics.Conversions.WithLabelValues("failed").Inc()
		if !kmz.IsDecodeError(err) {
			return err
		}
		p.logger.Error("csv conversion failed", "path", archivePath, "error", err)
		sum.ConversionFailures++
		event.CSVPath = ""
		event.CSVError = err.Error()
		return nil
	}

	p.metrics.Conversions.WithLabelValues("converted").Inc()
	p.metrics.CSVRows.Add(float64(res.Rows))
	sum.Converted++
	event.CSVRows = res.Rows
	return nil
}
