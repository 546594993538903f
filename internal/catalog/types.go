package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Source column headers, after header whitespace has been collapsed.
const (
	NameField        = "Product Name"
	LabelField       = "Product label (3-5 Characters)"
	LinkField        = "Product Image Website Link"
	DescriptionField = "Description"
	ImageField       = "Image Link"
)

// DisplayFieldNames is the allow-list of source columns published under
// "fields", in output order. Columns not listed here are dropped.
var DisplayFieldNames = []string{
	LabelField,
	"Category Name",
	"Processes",
	"Weight (gm)",
	"Cost Price (Nrs)",
	"HS CODE",
	DescriptionField,
	"Attributes",
	"Occassion",
	"Type",
}

// SourceRow maps a cleaned header to the trimmed cell value of one data row.
// Every header of the source resolves, possibly to "".
type SourceRow map[string]string

// CatalogRecord is one admitted row, tagged with where it came from.
// Identifier is set once by the Registry and read-only afterwards.
type CatalogRecord struct {
	Source     string // base name of the source file
	Line       int    // 1-indexed line of the row within Source
	Fields     SourceRow
	Identifier string
}

// Get returns the trimmed value of field, or "" when the source lacks it.
func (r *CatalogRecord) Get(field string) string {
	return strings.TrimSpace(r.Fields[field])
}

// SlugSource returns the text the identifier is derived from: the short
// label when present, otherwise the name.
func (r *CatalogRecord) SlugSource() string {
	if label := r.Get(LabelField); label != "" {
		return label
	}
	return r.Get(NameField)
}

// CatalogEntry is the published shape of one product.
// Field order here is the key order of the catalog document.
type CatalogEntry struct {
	Slug        string        `json:"slug"`
	Name        string        `json:"name"`
	Code        string        `json:"code"`
	URL         string        `json:"url"`
	Image       string        `json:"image"`
	Description string        `json:"description"`
	Fields      DisplayFields `json:"fields"`
}

// DisplayField is one named value of the display allow-list.
type DisplayField struct {
	Name  string
	Value string
}

// DisplayFields is an ordered JSON object. Unlike a map it keeps the
// allow-list order when encoded.
type DisplayFields []DisplayField

// Get returns the value published for name.
func (f DisplayFields) Get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return field.Value
		}
	}
	return ""
}

// MarshalJSON implements json.Marshaler.
func (f DisplayFields) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range f {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, field.Name); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, field.Value); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, preserving key order.
func (f *DisplayFields) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*f = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("display fields: expected object")
	}

	var out DisplayFields
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("display fields: unexpected key %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("display fields: value of %q: %w", name, err)
		}
		out = append(out, DisplayField{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*f = out
	return nil
}

// writeJSONString appends s as a JSON string without HTML escaping, so
// descriptions and links stay readable in diffs.
func writeJSONString(buf *bytes.Buffer, s string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	// Encode terminates every value with a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
