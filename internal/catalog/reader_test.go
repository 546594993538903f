package catalog

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

const header = "Product Name,Product label (3-5 Characters),Product Image Website Link,Category Name\n"

func TestNewReader_Header(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  []string
	}{
		{
			name:  "plain header",
			input: []byte("Product Name,Type\n"),
			want:  []string{"Product Name", "Type"},
		},
		{
			name:  "utf-8 BOM stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("Product Name,Type\n")...),
			want:  []string{"Product Name", "Type"},
		},
		{
			name:  "wrapped header collapsed",
			input: []byte("\"Weight \n(gm)\",\"  Cost   Price (Nrs) \"\n"),
			want:  []string{"Weight (gm)", "Cost Price (Nrs)"},
		},
		{
			name:  "utf-16 export",
			input: []byte{0xFF, 0xFE, 'N', 0, 'a', 0, 'm', 0, 'e', 0, '\n', 0},
			want:  []string{"Name"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewReader(bytes.NewReader(tt.input), ReadOptions{})
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			got := rd.Header()
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Header() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewReader_EmptyInput(t *testing.T) {
	rd, err := NewReader(strings.NewReader(""), ReadOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	if rd.Header() != nil {
		t.Errorf("Header() = %q, want nil", rd.Header())
	}
	if _, err := rd.Next(); err != io.EOF {
		t.Errorf("Next() error = %v, want io.EOF", err)
	}
}

func TestReader_Rows(t *testing.T) {
	input := header +
		"Red Mitten,RMT,https://example.com/rm,Winter\n" +
		",,,\n" +
		"  Scarf  \n" +
		",,https://example.com/orphan,\n" +
		"Beanie,BNE,,Hats\n"

	rd, err := NewReader(strings.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	rows, err := ReadAll(rd)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	names := []string{rows[0][NameField], rows[1][NameField], rows[2][NameField]}
	if strings.Join(names, "|") != "Red Mitten|Scarf|Beanie" {
		t.Errorf("names = %q", names)
	}

	// Short rows are padded; every header resolves.
	if v, ok := rows[1][LinkField]; !ok || v != "" {
		t.Errorf("padded %s = %q, %v; want empty, present", LinkField, v, ok)
	}
	if got := rows[2]["Category Name"]; got != "Hats" {
		t.Errorf("Category Name = %q, want %q", got, "Hats")
	}

	stats := rd.Stats()
	if stats.Rows != 4 || stats.Blank != 1 || stats.Admitted != 3 || stats.Skipped != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
	if stats.Bytes != int64(len(input)) {
		t.Errorf("Stats().Bytes = %d, want %d", stats.Bytes, len(input))
	}

	skipped := rd.Skipped()
	if len(skipped) != 1 || skipped[0].Line != 5 {
		t.Errorf("Skipped() = %+v, want one row at line 5", skipped)
	}
}

func TestReader_Line(t *testing.T) {
	rd, err := NewReader(strings.NewReader("Product Name\nA\n\nB\n"), ReadOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}

	wantLines := []int{2, 4}
	for _, want := range wantLines {
		if _, err := rd.Next(); err != nil {
			t.Fatalf("Next() error = %v", err)
		}
		if rd.Line() != want {
			t.Errorf("Line() = %d, want %d", rd.Line(), want)
		}
	}
}

func TestReader_AdmitURLOnly(t *testing.T) {
	input := header + ",,https://example.com/orphan,\n,,,Loose\n"

	tests := []struct {
		name string
		opts ReadOptions
		want int
	}{
		{"name required", ReadOptions{}, 0},
		{"name or url", ReadOptions{AdmitURLOnly: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewReader(strings.NewReader(input), tt.opts)
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			rows, err := ReadAll(rd)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(rows) != tt.want {
				t.Errorf("got %d rows, want %d", len(rows), tt.want)
			}
		})
	}
}

func TestReader_Overlong(t *testing.T) {
	input := "Product Name,Type\n" +
		"Scarf,Wool,EXTRA\n" +
		"Beanie,Wool,,\n"

	tests := []struct {
		name      string
		policy    OverlongPolicy
		wantRows  int
		wantLong  int
		wantSkips int
	}{
		{"truncate", TruncateOverlong, 2, 1, 0},
		{"reject", RejectOverlong, 1, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd, err := NewReader(strings.NewReader(input), ReadOptions{Overlong: tt.policy})
			if err != nil {
				t.Fatalf("NewReader() error = %v", err)
			}
			rows, err := ReadAll(rd)
			if err != nil {
				t.Fatalf("ReadAll() error = %v", err)
			}
			if len(rows) != tt.wantRows {
				t.Fatalf("got %d rows, want %d", len(rows), tt.wantRows)
			}
			if len(rows[0]) != 2 {
				t.Errorf("row has %d fields, want 2", len(rows[0]))
			}
			stats := rd.Stats()
			if stats.Overlong != tt.wantLong {
				t.Errorf("Stats().Overlong = %d, want %d", stats.Overlong, tt.wantLong)
			}
			if stats.Skipped != tt.wantSkips {
				t.Errorf("Stats().Skipped = %d, want %d", stats.Skipped, tt.wantSkips)
			}
		})
	}
}

func TestReader_InvalidUTF8Replaced(t *testing.T) {
	input := []byte("Product Name\ncaf\xe9 mug\n")
	rd, err := NewReader(bytes.NewReader(input), ReadOptions{})
	if err != nil {
		t.Fatalf("NewReader() error = %v", err)
	}
	row, err := rd.Next()
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if got := row[NameField]; got != "caf\uFFFD mug" {
		t.Errorf("name = %q, want %q", got, "caf\uFFFD mug")
	}
}

func TestCleanHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Product Name", "Product Name"},
		{"  Product   Name ", "Product Name"},
		{"Weight\r\n(gm)", "Weight (gm)"},
		{"\tHS\tCODE\t", "HS CODE"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := CleanHeader(tt.in); got != tt.want {
			t.Errorf("CleanHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseOverlongPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    OverlongPolicy
		wantErr bool
	}{
		{"", TruncateOverlong, false},
		{"truncate", TruncateOverlong, false},
		{"REJECT", RejectOverlong, false},
		{"split", TruncateOverlong, true},
	}

	for _, tt := range tests {
		got, err := ParseOverlongPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseOverlongPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseOverlongPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
