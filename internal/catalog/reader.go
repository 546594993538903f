package catalog

// reader.go decodes one spreadsheet export into admitted SourceRows.
//
// Exports from spreadsheet tools arrive with a handful of recurring defects,
// all handled here without loading the whole file into memory:
//
//   - A leading byte-order mark (UTF-8, or UTF-16 from "Unicode text" exports)
//   - Invalid UTF-8 sequences, replaced with U+FFFD
//   - Headers wrapped over several lines inside quotes ("Weight \n(gm)")
//   - Blank separator lines and ragged rows

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// OverlongPolicy decides what happens to rows with non-empty cells past the
// last header.
type OverlongPolicy int

const (
	// TruncateOverlong drops the extra cells and keeps the row.
	TruncateOverlong OverlongPolicy = iota
	// RejectOverlong skips the row entirely.
	RejectOverlong
)

// ParseOverlongPolicy converts "truncate" or "reject" to an OverlongPolicy.
func ParseOverlongPolicy(s string) (OverlongPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "truncate":
		return TruncateOverlong, nil
	case "reject":
		return RejectOverlong, nil
	default:
		return TruncateOverlong, fmt.Errorf("unknown overlong row policy %q", s)
	}
}

func (p OverlongPolicy) String() string {
	if p == RejectOverlong {
		return "reject"
	}
	return "truncate"
}

// ReadOptions controls admission and ragged-row handling.
type ReadOptions struct {
	// AdmitURLOnly also admits rows with an empty name when they carry a
	// product link. Off by default: a name is required.
	AdmitURLOnly bool

	Overlong OverlongPolicy
}

// admit applies the admission rule to a padded, trimmed row.
func (o ReadOptions) admit(row SourceRow) bool {
	if row[NameField] != "" {
		return true
	}
	return o.AdmitURLOnly && row[LinkField] != ""
}

// ReadStats counts what a Reader saw.
type ReadStats struct {
	Rows     int   // non-blank data rows
	Blank    int   // rows whose every cell was empty
	Admitted int   // rows returned by Next
	Skipped  int   // non-blank rows that were not admitted
	Overlong int   // rows with content past the last header
	Bytes    int64 // raw bytes consumed, BOM included
}

// SkippedRow records a non-blank row that did not become a record.
type SkippedRow struct {
	Line   int
	Reason string
}

// Reader yields admitted rows of one delimited source, lazily.
type Reader struct {
	csv     *csv.Reader
	counter *countingReader
	opts    ReadOptions

	header  []string
	line    int
	stats   ReadStats
	skipped []SkippedRow
}

// NewReader reads the header row of r and returns a Reader positioned at the
// first data row. An empty input yields a Reader with no header whose Next
// returns io.EOF immediately.
func NewReader(r io.Reader, opts ReadOptions) (*Reader, error) {
	counter := &countingReader{reader: r}

	// BOMOverride strips a UTF-8 BOM (or switches to UTF-16 when it finds one);
	// the UTF-8 fallback replaces invalid sequences.
	decoded := transform.NewReader(counter, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	cr := csv.NewReader(decoded)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	rd := &Reader{csv: cr, counter: counter, opts: opts}

	raw, err := cr.Read()
	if err == io.EOF {
		return rd, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	rd.header = make([]string, len(raw))
	for i, h := range raw {
		rd.header[i] = CleanHeader(h)
	}
	return rd, nil
}

// Header returns the cleaned header row.
func (r *Reader) Header() []string {
	return r.header
}

// Line returns the 1-indexed line of the row most recently returned by Next.
func (r *Reader) Line() int {
	return r.line
}

// Stats returns counters for the rows consumed so far.
func (r *Reader) Stats() ReadStats {
	s := r.stats
	s.Bytes = r.counter.bytesRead
	return s
}

// Skipped returns the non-blank rows that were not admitted, in source order.
func (r *Reader) Skipped() []SkippedRow {
	return r.skipped
}

// Next returns the next admitted row, or io.EOF when the source is exhausted.
// Any other error means the source could not be decoded.
func (r *Reader) Next() (SourceRow, error) {
	if r.header == nil {
		return nil, io.EOF
	}

	for {
		cells, err := r.csv.Read()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			return nil, err
		}
		line, _ := r.csv.FieldPos(0)

		if isEmptyRow(cells) {
			r.stats.Blank++
			continue
		}
		r.stats.Rows++

		if hasOverflow(cells, len(r.header)) {
			r.stats.Overlong++
			if r.opts.Overlong == RejectOverlong {
				r.skip(line, ErrRowTooLong.Error())
				continue
			}
		}

		row := make(SourceRow, len(r.header))
		for i, h := range r.header {
			if i < len(cells) {
				row[h] = strings.TrimSpace(cells[i])
			} else {
				row[h] = ""
			}
		}

		if !r.opts.admit(row) {
			r.skip(line, "empty "+NameField)
			continue
		}

		r.stats.Admitted++
		r.line = line
		return row, nil
	}
}

func (r *Reader) skip(line int, reason string) {
	r.stats.Skipped++
	r.skipped = append(r.skipped, SkippedRow{Line: line, Reason: reason})
}

// ReadAll drains r and returns every admitted row.
func ReadAll(r *Reader) ([]SourceRow, error) {
	var rows []SourceRow
	for {
		row, err := r.Next()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, err
		}
		rows = append(rows, row)
	}
}

// CleanHeader collapses internal whitespace runs (including the newlines of
// wrapped header cells) to a single space and trims the result.
func CleanHeader(h string) string {
	return strings.Join(strings.Fields(h), " ")
}

// isEmptyRow reports whether every cell is empty or whitespace.
func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// hasOverflow reports whether row has a non-empty cell past width. Trailing
// empty cells, as left by exporters that pad with delimiters, do not count.
func hasOverflow(row []string, width int) bool {
	for i := width; i < len(row); i++ {
		if strings.TrimSpace(row[i]) != "" {
			return true
		}
	}
	return false
}

// countingReader tracks bytes consumed from the underlying source.
type countingReader struct {
	reader    io.Reader
	bytesRead int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.reader.Read(p)
	c.bytesRead += int64(n)
	return n, err
}
