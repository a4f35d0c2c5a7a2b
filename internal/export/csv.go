package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/sadopc/tasktime/internal/report"
)

// NoDataMessage fills the Description column when there is nothing to export.
const NoDataMessage = "No time entries found for the selected filters"

var csvHeader = []string{
	"Date", "Start Time", "End Time", "Duration (hours)",
	"Task", "Project", "Assignee", "Status", "Description",
}

// WriteCSV writes one row per entry after a header row. An empty input
// produces a single placeholder row instead of a bare header.
func WriteCSV(w io.Writer, entries []report.EnrichedEntry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	if len(entries) == 0 {
		row := make([]string, len(csvHeader))
		row[len(row)-1] = NoDataMessage
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	for _, e := range entries {
		row := []string{
			e.StartTime.Local().Format(report.DateLayout),
			e.StartTime.Local().Format(timeLayout),
			e.EndTime.Local().Format(timeLayout),
			fmt.Sprintf("%.2f", float64(e.Duration)/3600),
			e.TaskTitle,
			e.Project,
			e.Assignee,
			e.Status,
			e.Description,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ToCSV renders entries as a CSV string.
func ToCSV(entries []report.EnrichedEntry) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, entries); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ToCSVFile writes entries to a CSV file at path.
func ToCSVFile(entries []report.EnrichedEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, entries); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}
