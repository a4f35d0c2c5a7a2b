package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/tasktime/internal/report"
)

type jsonExport struct {
	ExportedAt   string      `json:"exported_at"`
	Count        int         `json:"count"`
	TotalSeconds int64       `json:"total_seconds"`
	Entries      []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	ID          string   `json:"id"`
	TaskID      int64    `json:"task_id"`
	Task        string   `json:"task"`
	Project     string   `json:"project,omitempty"`
	Assignee    string   `json:"assignee,omitempty"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	StartTime   string   `json:"start_time"`
	EndTime     string   `json:"end_time"`
	DurationSec int64    `json:"duration_seconds"`
	Hours       float64  `json:"hours"`
	Description string   `json:"description,omitempty"`
}

// WriteJSON writes entries as an indented JSON document.
func WriteJSON(w io.Writer, entries []report.EnrichedEntry) error {
	export := jsonExport{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		Count:        len(entries),
		TotalSeconds: report.Total(entries),
		Entries:      make([]jsonEntry, 0, len(entries)),
	}

	for _, e := range entries {
		export.Entries = append(export.Entries, jsonEntry{
			ID:          e.ID,
			TaskID:      e.TaskID,
			Task:        e.TaskTitle,
			Project:     e.Project,
			Assignee:    e.Assignee,
			Status:      e.Status,
			Priority:    e.Priority,
			Tags:        e.Tags,
			StartTime:   e.StartTime.Local().Format(time.RFC3339),
			EndTime:     e.EndTime.Local().Format(time.RFC3339),
			DurationSec: e.Duration,
			Hours:       report.Hours(e.Duration),
			Description: e.Description,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(export); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}

func ToJSONFile(entries []report.EnrichedEntry, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteJSON(f, entries); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return f.Close()
}
