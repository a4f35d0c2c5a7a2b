package cli

import (
	"fmt"
	"time"

	"github.com/sadopc/tasktime/internal/report"
	"github.com/spf13/cobra"
)

const rangeAll = "all"

// filterFlags are the report filters shared by report and export.
type filterFlags struct {
	rangeName string
	from      string
	to        string
	project   string
	user      string
	tag       string
	priority  string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.rangeName, "range", "this-week", "Date range: today, yesterday, this-week, last-week, this-month, last-month or all")
	fl.StringVar(&f.from, "from", "", "First day (YYYY-MM-DD), overrides --range")
	fl.StringVar(&f.to, "to", "", "Last day (YYYY-MM-DD), inclusive, overrides --range")
	fl.StringVar(&f.project, "project", "", "Only this project")
	fl.StringVar(&f.user, "user", "", "Only tasks assigned to this user")
	fl.StringVar(&f.tag, "tag", "", "Only tasks with this tag")
	fl.StringVar(&f.priority, "priority", "", "Only tasks with this priority")
}

// filter resolves the flags against now. --from and --to replace the
// preset range, and a lone --from or --to leaves the other side open.
func (f *filterFlags) filter(now time.Time, weekStart time.Weekday) (report.Filter, error) {
	out := report.Filter{
		Project:  f.project,
		Assignee: f.user,
		Tag:      f.tag,
		Priority: f.priority,
	}

	if f.from != "" || f.to != "" {
		var err error
		if out.Start, err = parseDay(f.from, now.Location()); err != nil {
			return report.Filter{}, fmt.Errorf("--from: %w", err)
		}
		if out.End, err = parseDay(f.to, now.Location()); err != nil {
			return report.Filter{}, fmt.Errorf("--to: %w", err)
		}
		if !out.Start.IsZero() && !out.End.IsZero() && out.End.Before(out.Start) {
			return report.Filter{}, fmt.Errorf("--to %s is before --from %s", f.to, f.from)
		}
		return out, nil
	}

	if f.rangeName == rangeAll {
		return out, nil
	}
	preset, err := report.ParsePreset(f.rangeName)
	if err != nil {
		return report.Filter{}, err
	}
	if preset == report.Custom {
		return report.Filter{}, fmt.Errorf("use --from and --to for a custom range")
	}
	out.Start, out.End = report.Range(preset, now, weekStart)
	return out, nil
}

func parseDay(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(report.DateLayout, s, loc)
}

// describeRange renders a filter's dates for command output.
func describeRange(f report.Filter) string {
	day := func(t time.Time, open string) string {
		if t.IsZero() {
			return open
		}
		return t.Format(report.DateLayout)
	}
	return day(f.Start, "beginning") + " to " + day(f.End, "now")
}
