// Package export writes the final snapshot of a capture session.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lcalzada-xor/nearby/internal/core/ports"
)

// Supported formats.
const (
	FormatJSON   = "json"
	FormatPDF    = "pdf"
	FormatSQLite = "sqlite"
)

var ErrUnknownFormat = errors.New("unknown export format")

// Stdout receives exports written without a path.
var Stdout io.Writer = os.Stdout

// Formats lists the names accepted by ForFormat.
func Formats() []string {
	return []string{FormatJSON, FormatPDF, FormatSQLite}
}

// ForFormat returns the exporter registered under name.
func ForFormat(name string) (ports.Exporter, error) {
	switch strings.ToLower(name) {
	case FormatJSON:
		return NewJSONExporter(), nil
	case FormatPDF:
		return NewPDFExporter(), nil
	case FormatSQLite:
		return NewSQLiteExporter(), nil
	}
	return nil, fmt.Errorf("%w %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats(), ", "))
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// create opens path for writing, or Stdout when path is empty.
func create(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}
