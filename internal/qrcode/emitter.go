package qrcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/JonMunkholm/qrcatalog/internal/logging"
	"github.com/JonMunkholm/qrcatalog/internal/store"
)

// Defaults for EmitterOptions.
const (
	DefaultPagePath = "product.html"
	DefaultDir      = "qrcodes"
	DefaultWorkers  = 4
)

// PageURL builds the detail-page address a code points at:
// <base>/<pagePath>?p=<id>. base must be an absolute http(s) URL.
func PageURL(base, pagePath, id string) (string, error) {
	if err := ValidateBaseURL(base); err != nil {
		return "", err
	}
	if strings.TrimSpace(id) == "" {
		return "", errors.New("identifier is required")
	}
	pagePath = strings.Trim(strings.TrimSpace(pagePath), "/")
	if pagePath == "" {
		pagePath = DefaultPagePath
	}
	return strings.TrimRight(strings.TrimSpace(base), "/") + "/" + pagePath + "?p=" + url.QueryEscape(id), nil
}

// ValidateBaseURL checks that base is an absolute http or https URL without
// a query or fragment.
func ValidateBaseURL(base string) error {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return fmt.Errorf("invalid base url %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base url %q: scheme must be http or https", base)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid base url %q: host is required", base)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid base url %q: query and fragment are not allowed", base)
	}
	return nil
}

// EmitterOptions configures an Emitter.
type EmitterOptions struct {
	// Encoder is the encoding capability. Nil means none.
	Encoder Encoder

	// Store receives artifacts at <Dir>/<identifier>.<ext>.
	Store store.Store

	BaseURL  string
	PagePath string
	Dir      string

	// Workers bounds parallel artifact writes.
	Workers int

	// Logger overrides the context logger of each EmitAll call.
	Logger *slog.Logger
}

// EmitReport counts the artifacts of one EmitAll call.
type EmitReport struct {
	Written int
	Failed  int
	Skipped int
}

// Emitter derives each product's detail URL and persists its code.
type Emitter struct {
	encoder  Encoder
	store    store.Store
	baseURL  string
	pagePath string
	dir      string
	workers  int
	logger   *slog.Logger
}

// NewEmitter validates opts and returns an Emitter.
func NewEmitter(opts EmitterOptions) (*Emitter, error) {
	if opts.Store == nil {
		return nil, errors.New("artifact store is required")
	}
	if err := ValidateBaseURL(opts.BaseURL); err != nil {
		return nil, err
	}

	e := &Emitter{
		encoder:  opts.Encoder,
		store:    opts.Store,
		baseURL:  opts.BaseURL,
		pagePath: opts.PagePath,
		dir:      strings.Trim(opts.Dir, "/"),
		workers:  opts.Workers,
		logger:   opts.Logger,
	}
	if e.encoder == nil {
		e.encoder = Disabled("no encoder configured")
	}
	if e.pagePath == "" {
		e.pagePath = DefaultPagePath
	}
	if e.dir == "" {
		e.dir = DefaultDir
	}
	if e.workers <= 0 {
		e.workers = DefaultWorkers
	}
	return e, nil
}

// Available reports whether the Emitter can produce artifacts.
func (e *Emitter) Available() bool {
	return Available(e.encoder)
}

// URL returns the detail-page address for id.
func (e *Emitter) URL(id string) (string, error) {
	return PageURL(e.baseURL, e.pagePath, id)
}

// ArtifactPath returns the store path of id's artifact.
func (e *Emitter) ArtifactPath(id string) string {
	return path.Join(e.dir, id+"."+e.encoder.Ext())
}

// Emit encodes and stores the code for one identifier, overwriting any
// previous artifact.
func (e *Emitter) Emit(ctx context.Context, id string) error {
	target, err := e.URL(id)
	if err != nil {
		return err
	}
	data, err := e.encoder.Encode(target)
	if err != nil {
		return fmt.Errorf("encode %s: %w", target, err)
	}
	return e.store.Put(ctx, e.ArtifactPath(id), data)
}

// EmitAll writes one artifact per identifier, in parallel. Identifiers must
// be unique, so no two writes target the same path.
//
// A failed artifact is logged and counted; the rest continue. Without an
// encoding capability nothing is written and a single warning is logged.
func (e *Emitter) EmitAll(ctx context.Context, ids []string) EmitReport {
	logger := e.logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	if !e.Available() {
		reason := ""
		if d, ok := e.encoder.(disabledEncoder); ok {
			reason = d.reason
		}
		logger.Warn("qr encoding unavailable; skipping code generation",
			"reason", reason,
			"records", len(ids),
		)
		return EmitReport{Skipped: len(ids)}
	}

	var written, failed atomic.Int64

	var g errgroup.Group
	g.SetLimit(e.workers)
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := e.Emit(ctx, id); err != nil {
				failed.Add(1)
				logger.Warn("qr generation failed", "slug", id, "error", err)
				return nil
			}
			written.Add(1)
			return nil
		})
	}
	// Failures are counted above, never returned.
	g.Wait()

	report := EmitReport{
		Written: int(written.Load()),
		Failed:  int(failed.Load()),
	}
	report.Skipped = len(ids) - report.Written - report.Failed
	return report
}
