// Package qrcode emits the scannable codes that deep-link to each product's
// detail page.
package qrcode

import (
	"errors"
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

// ErrCodesUnavailable is returned by the encoder of a build that cannot
// produce codes.
var ErrCodesUnavailable = errors.New("qr encoding unavailable")

// Encoder turns a URL into the bytes of one code artifact. Implementations
// must be deterministic: the same content always yields the same bytes.
type Encoder interface {
	Encode(content string) ([]byte, error)
	// Ext is the artifact file extension, without the dot.
	Ext() string
}

// Supported artifact formats.
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// DefaultSize is the PNG edge length in pixels.
const DefaultSize = 256

// NewEncoder returns the encoder for format ("png" or "svg") at the given
// error-correction level ("low", "medium", "high", "highest").
func NewEncoder(format string, size int, level string) (Encoder, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	if size <= 0 {
		size = DefaultSize
	}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatPNG:
		return pngEncoder{level: lvl, size: size}, nil
	case FormatSVG:
		return svgEncoder{level: lvl}, nil
	default:
		return nil, fmt.Errorf("unsupported code format %q", format)
	}
}

// ParseLevel converts a level name to a recovery level. Empty means medium.
func ParseLevel(level string) (goqrcode.RecoveryLevel, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "low":
		return goqrcode.Low, nil
	case "", "medium":
		return goqrcode.Medium, nil
	case "high":
		return goqrcode.High, nil
	case "highest":
		return goqrcode.Highest, nil
	default:
		return goqrcode.Medium, fmt.Errorf("unknown error-correction level %q", level)
	}
}

type pngEncoder struct {
	level goqrcode.RecoveryLevel
	size  int
}

func (e pngEncoder) Encode(content string) ([]byte, error) {
	return goqrcode.Encode(content, e.level, e.size)
}

func (pngEncoder) Ext() string { return FormatPNG }

// svgEncoder draws each dark module as a unit square inside a viewBox the
// size of the symbol (quiet zone included), so the code scales losslessly
// for print.
type svgEncoder struct {
	level goqrcode.RecoveryLevel
}

func (e svgEncoder) Encode(content string) ([]byte, error) {
	q, err := goqrcode.New(content, e.level)
	if err != nil {
		return nil, err
	}
	bitmap := q.Bitmap()
	n := len(bitmap)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" shape-rendering="crispEdges">`, n, n)
	fmt.Fprintf(&b, `<rect width="%d" height="%d" fill="#ffffff"/>`, n, n)
	b.WriteString(`<path fill="#000000" d="`)
	for y, row := range bitmap {
		for x, dark := range row {
			if dark {
				fmt.Fprintf(&b, "M%d %dh1v1h-1z", x, y)
			}
		}
	}
	b.WriteString(`"/></svg>`)
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (svgEncoder) Ext() string { return FormatSVG }

// disabledEncoder stands in when the build has no encoding capability.
type disabledEncoder struct {
	reason string
}

// Disabled returns an Encoder that produces nothing. An Emitter holding it
// skips every artifact and warns once per build.
func Disabled(reason string) Encoder {
	return disabledEncoder{reason: reason}
}

func (e disabledEncoder) Encode(string) ([]byte, error) {
	return nil, fmt.Errorf("%w: %s", ErrCodesUnavailable, e.reason)
}

func (disabledEncoder) Ext() string { return "" }

// Available reports whether enc can produce artifacts.
func Available(enc Encoder) bool {
	if enc == nil {
		return false
	}
	_, off := enc.(disabledEncoder)
	return !off
}

// Terminal renders content as a compact block-character code for printing
// to a terminal, inverted for dark backgrounds.
func Terminal(content string) (string, error) {
	q, err := goqrcode.New(content, goqrcode.Low)
	if err != nil {
		return "", err
	}
	return q.ToSmallString(true), nil
}
