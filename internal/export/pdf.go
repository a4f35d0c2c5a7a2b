package export

import (
	"fmt"
	"io"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"

	"github.com/sadopc/tasktime/internal/report"
)

var pdfHeader = []string{"Date", "Task", "Assignee", "Status", "Hours"}

var pdfTable = props.TableList{
	HeaderProp: props.TableListContent{
		Size:      9,
		GridSizes: []uint{2, 4, 2, 2, 2},
	},
	ContentProp: props.TableListContent{
		Size:      9,
		GridSizes: []uint{2, 4, 2, 2, 2},
	},
	Align:                consts.Left,
	AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
	HeaderContentSpace:   1,
	Line:                 false,
}

// WritePDF renders a printable report: entries grouped by project, largest
// first, each with a subtotal, then the overall total.
func WritePDF(w io.Writer, entries []report.EnrichedEntry) error {
	m := buildPDF(entries)
	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func ToPDFFile(entries []report.EnrichedEntry, path string) error {
	if err := buildPDF(entries).OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf file: %w", err)
	}
	return nil
}

func buildPDF(entries []report.EnrichedEntry) pdf.Maroto {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Time Report", props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(dateSpan(entries), props.Text{
					Top:   2,
					Align: consts.Center,
					Size:  11,
				})
			})
		})
	})

	if len(entries) == 0 {
		m.Row(20, func() {
			m.Col(12, func() {
				m.Text(NoDataMessage, props.Text{Top: 10, Align: consts.Center, Size: 11})
			})
		})
		return m
	}

	groups := make(map[string][]report.EnrichedEntry)
	for _, e := range entries {
		key := report.Key(e, report.ByProject)
		groups[key] = append(groups[key], e)
	}

	for _, b := range report.TopN(report.Buckets(entries, report.ByProject), 0) {
		var rows [][]string
		for _, e := range groups[b.Key] {
			rows = append(rows, []string{
				e.StartTime.Local().Format(report.DateLayout),
				e.TaskTitle,
				e.Assignee,
				e.Status,
				fmt.Sprintf("%.2f", report.Hours(e.Duration)),
			})
		}

		title := b.Key
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(title, props.Text{Top: 5, Style: consts.Bold, Size: 12})
			})
		})
		m.TableList(pdfHeader, rows, pdfTable)

		subtotal := fmt.Sprintf("Subtotal: %.2f h", b.Hours())
		m.Row(8, func() {
			m.Col(12, func() {
				m.Text(subtotal, props.Text{Style: consts.Bold, Align: consts.Right, Size: 10})
			})
		})
	}

	total := fmt.Sprintf("Total: %.2f h (%d entries)", report.Hours(report.Total(entries)), len(entries))
	m.Row(20, func() {
		m.Col(12, func() {
			m.Text(total, props.Text{Top: 10, Style: consts.Bold, Align: consts.Right, Size: 12})
		})
	})
	return m
}

// dateSpan is the first and last day covered by entries.
func dateSpan(entries []report.EnrichedEntry) string {
	if len(entries) == 0 {
		return ""
	}
	first, last := entries[0].StartTime, entries[0].StartTime
	for _, e := range entries[1:] {
		if e.StartTime.Before(first) {
			first = e.StartTime
		}
		if e.StartTime.After(last) {
			last = e.StartTime
		}
	}
	return first.Local().Format(report.DateLayout) + " to " + last.Local().Format(report.DateLayout)
}
