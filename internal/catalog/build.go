package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/qrcatalog/internal/logging"
	"github.com/JonMunkholm/qrcatalog/internal/qrcode"
	"github.com/JonMunkholm/qrcatalog/internal/store"
)

// DocumentPath is where the catalog document lives inside the output store.
const DocumentPath = "data/products.json"

// BuildOptions configures one build invocation.
type BuildOptions struct {
	// BuildID tags every log line of the build. Generated when empty.
	BuildID string

	SourceDir string
	Read      ReadOptions

	// Store receives the catalog document. Required.
	Store store.Store

	// Emitter produces the code artifacts. A nil Emitter skips them.
	Emitter *qrcode.Emitter

	// Logger defaults to the context logger.
	Logger *slog.Logger
}

// Report summarizes a build.
type Report struct {
	BuildID  string
	Sources  []SourceReport
	Entries  []CatalogEntry
	Codes    qrcode.EmitReport
	Duration time.Duration

	// Document is the store path of the written catalog document, or "" when
	// nothing was admitted and no document was written.
	Document string
}

// SourceErrors returns the sources that were skipped.
func (r *Report) SourceErrors() []error {
	var errs []error
	for _, s := range r.Sources {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errs
}

// Build runs the whole pipeline: aggregate sources, assign identifiers,
// project entries, emit code artifacts, then write the catalog document.
//
// The document write is the last step and is atomic in the store, so an
// interrupted build leaves the previous document in place. When no row is
// admitted the build writes nothing and returns a report with no entries.
// The only errors returned are a missing store, a cancelled ctx, and a failed
// document write.
func Build(ctx context.Context, opts BuildOptions) (*Report, error) {
	if opts.Store == nil {
		return nil, ErrMissingDocumentStore
	}

	start := time.Now()
	buildID := opts.BuildID
	if buildID == "" {
		buildID = uuid.New().String()
	}
	ctx = logging.WithBuildID(ctx, buildID)
	logger := opts.Logger
	if logger == nil {
		logger = logging.WithFields(ctx, "source_dir", opts.SourceDir)
	} else {
		logger = logger.With("build_id", buildID)
	}

	report := &Report{BuildID: buildID}
	defer func() {
		report.Duration = time.Since(start)
	}()

	records, sources, err := Aggregate(ctx, opts.SourceDir, opts.Read, logger)
	report.Sources = sources
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return report, err
		}
		logger.Error("source discovery failed", "dir", opts.SourceDir, "error", err)
	}

	if len(records) == 0 {
		logger.Info("no products discovered; catalog document not written")
		return report, nil
	}

	registry := NewRegistry()
	entries := make([]CatalogEntry, 0, len(records))
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		registry.AssignRecord(rec)
		entries = append(entries, Project(rec))
		ids = append(ids, rec.Identifier)
	}
	report.Entries = entries

	doc, err := EncodeDocument(entries)
	if err != nil {
		return report, err
	}

	if opts.Emitter != nil {
		report.Codes = opts.Emitter.EmitAll(ctx, ids)
	}

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("operation cancelled: %w", err)
	}

	if err := opts.Store.Put(ctx, DocumentPath, doc); err != nil {
		return report, fmt.Errorf("write catalog document: %w", err)
	}
	report.Document = DocumentPath

	logger.Info("catalog document written",
		"path", DocumentPath,
		"entries", len(entries),
		"codes_written", report.Codes.Written,
		"codes_failed", report.Codes.Failed,
		"codes_skipped", report.Codes.Skipped,
	)
	return report, nil
}
