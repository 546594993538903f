package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SourceReport summarizes one source's contribution to a build.
// Err is a *SourceError when the source was skipped.
type SourceReport struct {
	Source  string
	Stats   ReadStats
	Skipped []SkippedRow
	Err     error
}

// DiscoverSources returns the *.csv files directly inside dir, sorted by
// name. Subdirectories are not searched.
func DiscoverSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoSources, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}

	sort.Slice(paths, func(i, j int) bool {
		return filepath.Base(paths[i]) < filepath.Base(paths[j])
	})
	return paths, nil
}

// Aggregate reads every source in dir and concatenates their admitted rows,
// in source order then row order. Duplicates are kept; telling them apart is
// the Registry's job.
//
// A source that cannot be opened or decoded is logged, contributes no rows,
// and does not stop the others. The returned error is non-nil only when dir
// itself cannot be listed or ctx is done.
func Aggregate(ctx context.Context, dir string, opts ReadOptions, logger *slog.Logger) ([]*CatalogRecord, []SourceReport, error) {
	if logger == nil {
		logger = slog.Default()
	}

	paths, err := DiscoverSources(dir)
	if err != nil {
		return nil, nil, err
	}

	var records []*CatalogRecord
	reports := make([]SourceReport, 0, len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return records, reports, fmt.Errorf("operation cancelled: %w", err)
		}

		name := filepath.Base(path)
		recs, report := readSource(path, opts)
		reports = append(reports, report)

		if report.Err != nil {
			logger.Warn("source skipped", "source", name, "error", report.Err)
			continue
		}

		logger.Info("source loaded",
			"source", name,
			"rows", report.Stats.Rows,
			"admitted", report.Stats.Admitted,
			"skipped", report.Stats.Skipped,
			"overlong", report.Stats.Overlong,
			"bytes", report.Stats.Bytes,
		)
		for _, s := range report.Skipped {
			logger.Debug("row skipped", "source", name, "line", s.Line, "reason", s.Reason)
		}

		records = append(records, recs...)
	}

	return records, reports, nil
}

// readSource reads one file. On failure the partial rows are discarded so a
// half-decoded source never leaks into the catalog.
func readSource(path string, opts ReadOptions) ([]*CatalogRecord, SourceReport) {
	name := filepath.Base(path)
	report := SourceReport{Source: name}

	f, err := os.Open(path)
	if err != nil {
		report.Err = &SourceError{Source: name, Err: err}
		return nil, report
	}
	defer f.Close()

	rd, err := NewReader(f, opts)
	if err != nil {
		report.Err = &SourceError{Source: name, Err: err}
		return nil, report
	}

	var records []*CatalogRecord
	for {
		row, err := rd.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			report.Stats = rd.Stats()
			report.Err = &SourceError{Source: name, Err: err}
			return nil, report
		}
		records = append(records, &CatalogRecord{
			Source: name,
			Line:   rd.Line(),
			Fields: row,
		})
	}

	report.Stats = rd.Stats()
	report.Skipped = rd.Skipped()
	return records, report
}
