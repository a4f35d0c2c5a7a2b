package export

import (
	"fmt"
	"io"
	"time"

	"github.com/sadopc/tasktime/internal/report"
)

const timeLayout = "15:04:05"

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// Formats lists the supported formats in menu order.
var Formats = []Format{FormatCSV, FormatJSON, FormatPDF}

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatJSON, FormatPDF:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// FileName is the default report file name for a date range. Open ends are
// written as "all".
func FileName(f Format, start, end time.Time) string {
	return fmt.Sprintf("time-report-%s-to-%s.%s", dateOrAll(start), dateOrAll(end), f)
}

func dateOrAll(t time.Time) string {
	if t.IsZero() {
		return "all"
	}
	return t.Format(report.DateLayout)
}

// Write writes entries to w in format f.
func Write(f Format, w io.Writer, entries []report.EnrichedEntry) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, entries)
	case FormatPDF:
		return WritePDF(w, entries)
	default:
		return WriteCSV(w, entries)
	}
}

// ToFile writes entries to path in format f.
func ToFile(f Format, entries []report.EnrichedEntry, path string) error {
	switch f {
	case FormatJSON:
		return ToJSONFile(entries, path)
	case FormatPDF:
		return ToPDFFile(entries, path)
	default:
		return ToCSVFile(entries, path)
	}
}
