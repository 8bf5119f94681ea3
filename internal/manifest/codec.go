package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

var (
	// ErrInvalidUTF8 reports a file name or text that JSON cannot carry unchanged.
	ErrInvalidUTF8 = errors.New("invalid UTF-8")
	// ErrTimeOutOfRange reports a CreatedAt whose year is outside 0000-9999.
	ErrTimeOutOfRange = errors.New("createdAt out of range")
)

// timeLayout is RFC 3339 with nanoseconds; CreatedAt is always written in UTC.
const timeLayout = time.RFC3339Nano

type wireManifest struct {
	Version   int    `json:"version"`
	CreatedAt string `json:"createdAt"`
	Files     []File `json:"files"`
}

// Encode serializes m as compact UTF-8 JSON with a fixed field order. It
// refuses input that Decode could not restore exactly.
func Encode(m Manifest) (string, error) {
	if y := m.CreatedAt.UTC().Year(); y < 0 || y > 9999 {
		return "", fmt.Errorf("manifest: encode: %w: year %d", ErrTimeOutOfRange, y)
	}
	for _, f := range m.Files {
		if !utf8.ValidString(f.FileName) {
			return "", fmt.Errorf("manifest: encode: %w in file name %q", ErrInvalidUTF8, f.FileName)
		}
		if !utf8.ValidString(f.Text) {
			return "", fmt.Errorf("manifest: encode: %w in text of %s", ErrInvalidUTF8, f.FileName)
		}
	}
	files := m.Files
	if files == nil {
		files = []File{}
	}
	wire := wireManifest{
		Version:   m.Version,
		CreatedAt: m.CreatedAt.UTC().Format(timeLayout),
		Files:     files,
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(wire); err != nil {
		return "", fmt.Errorf("manifest: encode: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode parses a payload produced by Encode.
func Decode(payload string) (Manifest, error) {
	var wire wireManifest
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return Manifest{}, fmt.Errorf("manifest: decode: %w", err)
	}
	if wire.Version != Version {
		return Manifest{}, fmt.Errorf("manifest: unsupported version %d", wire.Version)
	}
	createdAt, err := time.Parse(timeLayout, wire.CreatedAt)
	if err != nil {
		return Manifest{}, fmt.Errorf("manifest: createdAt: %w", err)
	}
	files := wire.Files
	if files == nil {
		files = []File{}
	}
	return Manifest{
		Version:   wire.Version,
		CreatedAt: createdAt.UTC(),
		Files:     files,
	}, nil
}
