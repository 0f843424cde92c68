package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/pts-radar/internal/pipeline"
)

// Supported export formats.
const (
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// Write exports result to path, choosing the format from the file extension.
func Write(path string, result *pipeline.Result) error {
	switch FormatOf(path) {
	case FormatJSON:
		return WriteJSON(path, result)
	case FormatXLSX:
		return WriteXLSX(path, result)
	default:
		return &Error{Path: path, Message: fmt.Sprintf("unsupported export format %q (use .json or .xlsx)", filepath.Ext(path))}
	}
}

// FormatOf returns the export format implied by path's extension.
func FormatOf(path string) string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
}

// TimestampedPath returns dir/pts-radar-YYYYMMDD-HHMMSS.<format> for t.
func TimestampedPath(dir, format string, t time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("pts-radar-%s.%s", t.Format("20060102-150405"), format))
}
