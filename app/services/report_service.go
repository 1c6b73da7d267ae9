package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"go.uber.org/zap"
)

// Reporter writes the daily export of every resource marked scheduled.
type Reporter struct {
	Defs    *listing.Definitions
	Sources database.Sources
	Dir     string
	Log     *zap.Logger
}

// GenerateDailyReports writes <Dir>/<filename>_<date>.csv for each scheduled
// resource and returns the paths written. Reports that already exist for the day are
// left alone.
func (r *Reporter) GenerateDailyReports(ctx context.Context, now time.Time) ([]string, error) {
	logger := r.Log
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Starting daily report generation...")

	if err := os.MkdirAll(r.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir: %w", err)
	}

	var (
		written []string
		errs    []error
	)
	for _, def := range r.Defs.Resources {
		if !def.Export.Scheduled {
			continue
		}
		path := filepath.Join(r.Dir, def.ExportFilename(now, "csv"))
		if _, err := os.Stat(path); err == nil {
			logger.Debug("Report already exists", zap.String("path", path))
			continue
		}

		n, err := r.writeReport(ctx, def, path)
		if err != nil {
			logger.Error("Report failed", zap.String("resource", def.Name), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", def.Name, err))
			continue
		}
		logger.Info("Report written", zap.String("resource", def.Name), zap.String("path", path), zap.Int("records", n))
		written = append(written, path)
	}

	logger.Info("Daily report generation completed", zap.Int("reports", len(written)))
	return written, errors.Join(errs...)
}

func (r *Reporter) writeReport(ctx context.Context, def *listing.Definition, path string) (int, error) {
	src, ok := r.Sources.Get(def.Name)
	if !ok {
		return 0, fmt.Errorf("no data source")
	}
	records, err := src.List(ctx)
	if err != nil {
		return 0, err
	}

	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	if err := listing.WriteDelimited(f, records, def.Mapping(), ','); err != nil {
		f.Close()
		os.Remove(tmp)
		return 0, err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return 0, err
	}
	return len(records), os.Rename(tmp, path)
}
