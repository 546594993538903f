package qrcode

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func TestNewEncoder_PNG(t *testing.T) {
	enc, err := NewEncoder("png", 128, "medium")
	require.NoError(t, err)
	assert.Equal(t, "png", enc.Ext())

	data, err := enc.Encode("https://example.com/product.html?p=red-mitten")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "not a PNG")
}

func TestNewEncoder_DefaultsToPNG(t *testing.T) {
	enc, err := NewEncoder("", 0, "")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, enc.Ext())
}

func TestNewEncoder_SVG(t *testing.T) {
	enc, err := NewEncoder("SVG", 0, "high")
	require.NoError(t, err)
	assert.Equal(t, "svg", enc.Ext())

	data, err := enc.Encode("https://example.com/product.html?p=scarf")
	require.NoError(t, err)
	out := string(data)
	assert.True(t, strings.HasPrefix(out, "<svg "))
	assert.True(t, strings.HasSuffix(out, "</svg>\n"))
	assert.Contains(t, out, `viewBox="0 0 `)
	assert.Contains(t, out, "h1v1h-1z")
}

func TestNewEncoder_Errors(t *testing.T) {
	_, err := NewEncoder("gif", 0, "medium")
	assert.Error(t, err)

	_, err = NewEncoder("png", 0, "extreme")
	assert.Error(t, err)
}

func TestEncode_Deterministic(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatSVG} {
		t.Run(format, func(t *testing.T) {
			enc, err := NewEncoder(format, 200, "medium")
			require.NoError(t, err)

			a, err := enc.Encode("https://example.com/product.html?p=hand-knit-beanie")
			require.NoError(t, err)
			b, err := enc.Encode("https://example.com/product.html?p=hand-knit-beanie")
			require.NoError(t, err)
			assert.Equal(t, a, b)

			c, err := enc.Encode("https://example.com/product.html?p=scarf")
			require.NoError(t, err)
			assert.NotEqual(t, a, c)
		})
	}
}

func TestDisabled(t *testing.T) {
	enc := Disabled("encoder not installed")
	assert.False(t, Available(enc))
	assert.False(t, Available(nil))

	_, err := enc.Encode("https://example.com")
	assert.True(t, errors.Is(err, ErrCodesUnavailable))
	assert.Contains(t, err.Error(), "encoder not installed")

	png, err := NewEncoder(FormatPNG, 0, "")
	require.NoError(t, err)
	assert.True(t, Available(png))
}

func TestParseLevel(t *testing.T) {
	for _, name := range []string{"low", "medium", "HIGH", "highest", ""} {
		_, err := ParseLevel(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseLevel("ultra")
	assert.Error(t, err)
}

func TestTerminal(t *testing.T) {
	out, err := Terminal("http://192.168.1.20:8080/")
	require.NoError(t, err)
	assert.NotEmpty(t, out)
	assert.Greater(t, strings.Count(out, "\n"), 5)
}
