package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Project maps rec onto the published shape. Every allow-listed field is
// present in the result; columns missing from the source project as "".
// Link and description pass through verbatim.
func Project(rec *CatalogRecord) CatalogEntry {
	fields := make(DisplayFields, len(DisplayFieldNames))
	for i, name := range DisplayFieldNames {
		fields[i] = DisplayField{Name: name, Value: rec.Fields[name]}
	}

	return CatalogEntry{
		Slug:        rec.Identifier,
		Name:        rec.Get(NameField),
		Code:        rec.Get(LabelField),
		URL:         rec.Fields[LinkField],
		Image:       rec.Fields[ImageField],
		Description: rec.Fields[DescriptionField],
		Fields:      fields,
	}
}

// EncodeDocument renders entries as the catalog document: a two-space
// indented JSON array, HTML characters left unescaped, newline terminated.
// A nil slice encodes as [].
func EncodeDocument(entries []CatalogEntry) ([]byte, error) {
	if entries == nil {
		entries = []CatalogEntry{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		return nil, fmt.Errorf("encode catalog document: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses a catalog document written by EncodeDocument.
func DecodeDocument(data []byte) ([]CatalogEntry, error) {
	var entries []CatalogEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode catalog document: %w", err)
	}
	return entries, nil
}
