package report

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/tasktime/internal/tracking"
)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func entry(id string, start string, secs int64) tracking.TimeEntry {
	st := at(start)
	return tracking.TimeEntry{
		ID:        id,
		StartTime: st,
		EndTime:   st.Add(time.Duration(secs) * time.Second),
		Duration:  secs,
	}
}

func sample() []EnrichedEntry {
	return []EnrichedEntry{
		{TimeEntry: entry("a", "2024-01-01T09:00:00", 3600), TaskTitle: "Design", Project: "Web", Assignee: "Alex", Tags: []string{"UI"}, Priority: "High", Status: "In Progress"},
		{TimeEntry: entry("b", "2024-01-01T13:00:00", 1800), TaskTitle: "Search bug", Project: "Mobile", Assignee: "Morgan", Tags: []string{"Bug", "Frontend"}, Priority: "Urgent", Status: "To Do"},
		{TimeEntry: entry("c", "2024-01-02T10:00:00", 5400), TaskTitle: "Design", Project: "Web", Assignee: "Alex", Tags: []string{"UI"}, Priority: "High", Status: "In Progress"},
		{TimeEntry: entry("d", "2024-01-03T11:00:00", 600), TaskTitle: "Orphan"},
	}
}

type lookupFunc func(context.Context, int64) (tracking.TaskInfo, error)

func (f lookupFunc) LookupTask(ctx context.Context, id int64) (tracking.TaskInfo, error) {
	return f(ctx, id)
}

func TestEnrich(t *testing.T) {
	calls := 0
	lookup := lookupFunc(func(_ context.Context, id int64) (tracking.TaskInfo, error) {
		calls++
		if id == 2 {
			return tracking.TaskInfo{}, tracking.ErrTaskNotFound
		}
		return tracking.TaskInfo{ID: id, Title: "Write docs", Project: "Docs", Assignee: "Jamie", Tags: []string{"Content"}, Priority: "Low", Status: "Done"}, nil
	})

	raw := []tracking.TimeEntry{
		{ID: "1", TaskID: 1, Duration: 10},
		{ID: "2", TaskID: 1, Duration: 20},
		{ID: "3", TaskID: 2, Duration: 30},
	}
	got, err := Enrich(context.Background(), raw, lookup)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 2, calls, "lookups are memoized per task")

	assert.Equal(t, "Write docs", got[0].TaskTitle)
	assert.Equal(t, "Docs", got[1].Project)
	assert.Equal(t, "", got[2].Project)
	assert.Equal(t, int64(30), got[2].Duration)
	assert.Equal(t, Unspecified, Key(got[2], ByProject))
}

func TestEnrichPropagatesLookupErrors(t *testing.T) {
	boom := errors.New("db closed")
	lookup := lookupFunc(func(context.Context, int64) (tracking.TaskInfo, error) {
		return tracking.TaskInfo{}, boom
	})
	_, err := Enrich(context.Background(), []tracking.TimeEntry{{ID: "x", TaskID: 1}}, lookup)
	require.ErrorIs(t, err, boom)
}

func TestFilterSameDayRange(t *testing.T) {
	entries := []EnrichedEntry{
		{TimeEntry: entry("in", "2024-01-01T23:59:00", 60)},
		{TimeEntry: entry("out", "2024-01-02T00:00:01", 60)},
		{TimeEntry: entry("before", "2023-12-31T23:59:59", 60)},
		{TimeEntry: entry("midnight", "2024-01-01T00:00:00", 60)},
	}
	got := Apply(entries, Filter{Start: day("2024-01-01"), End: day("2024-01-01")})

	var ids []string
	for _, e := range got {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"in", "midnight"}, ids)
}

func TestFilterStartWithTimeOfDayCoversWholeDay(t *testing.T) {
	entries := []EnrichedEntry{
		{TimeEntry: entry("morning", "2024-01-01T08:00:00", 60)},
		{TimeEntry: entry("evening", "2024-01-01T20:00:00", 60)},
	}
	got := Apply(entries, Filter{Start: at("2024-01-01T15:30:00"), End: at("2024-01-01T09:00:00")})
	assert.Len(t, got, 2)
}

func withLocal(t *testing.T, zone *time.Location) {
	t.Helper()
	orig := time.Local
	time.Local = zone
	t.Cleanup(func() { time.Local = orig })
}

func TestDateKeyUsesLocalDay(t *testing.T) {
	withLocal(t, time.FixedZone("EST", -5*3600))
	// 23:30 on Jan 1 in EST, held as UTC the way storage returns it.
	start := time.Date(2024, 1, 2, 4, 30, 0, 0, time.UTC)
	entries := []EnrichedEntry{{TimeEntry: tracking.TimeEntry{ID: "late", StartTime: start, EndTime: start.Add(10 * time.Minute), Duration: 600}}}
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

	got := Apply(entries, Filter{Start: jan1, End: jan1})
	require.Len(t, got, 1)
	assert.Equal(t, "2024-01-01", Key(got[0], ByDate))
	assert.Equal(t, []Bucket{{Key: "2024-01-01", TotalSeconds: 600}}, DailySeries(got, jan1, jan1))
}

func TestFilterSentinelsAndComposition(t *testing.T) {
	entries := sample()

	assert.Len(t, Apply(entries, Filter{Project: AllProjects, Assignee: AllUsers, Tag: AllTags, Priority: AllPriorities}), 4)
	assert.Len(t, Apply(entries, Filter{Project: All}), 4)
	assert.Len(t, Apply(entries, Filter{Project: "Web"}), 2)
	assert.Len(t, Apply(entries, Filter{Assignee: "Morgan"}), 1)
	assert.Len(t, Apply(entries, Filter{Tag: "Frontend"}), 1)
	assert.Len(t, Apply(entries, Filter{Priority: "High"}), 2)
	assert.Len(t, Apply(entries, Filter{Project: "Web", Assignee: "Morgan"}), 0)

	got := Apply(entries, Filter{Project: "Web", Start: day("2024-01-02"), End: day("2024-01-05")})
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestFilterOpenEnded(t *testing.T) {
	entries := sample()
	assert.Len(t, Apply(entries, Filter{Start: day("2024-01-02")}), 2)
	assert.Len(t, Apply(entries, Filter{End: day("2024-01-01")}), 2)
}

func TestGroupByUnspecifiedAndConservation(t *testing.T) {
	entries := sample()
	for _, d := range Dimensions {
		groups := GroupBy(entries, d)
		var sum int64
		for _, v := range groups {
			sum += v
		}
		assert.Equal(t, Total(entries), sum, "dimension %s", d)
	}

	byProject := GroupBy(entries, ByProject)
	assert.Equal(t, map[string]int64{"Web": 9000, "Mobile": 1800, Unspecified: 600}, byProject)

	byDate := GroupBy(entries, ByDate)
	assert.Equal(t, map[string]int64{"2024-01-01": 5400, "2024-01-02": 5400, "2024-01-03": 600}, byDate)

	byUser := GroupBy(entries, ByAssignee)
	assert.Equal(t, int64(600), byUser[Unspecified])
}

func TestGroupByOrderIndependent(t *testing.T) {
	entries := sample()
	want := GroupBy(entries, ByTask)

	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10; i++ {
		shuffled := append([]EnrichedEntry(nil), entries...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, GroupBy(shuffled, ByTask))
	}
}

func TestBucketsAndTopN(t *testing.T) {
	buckets := Buckets(sample(), ByTask)
	require.Len(t, buckets, 3)
	assert.Equal(t, "Design", buckets[0].Key)
	assert.Equal(t, "Search bug", buckets[1].Key)

	ties := []Bucket{{"a", 10}, {"b", 30}, {"c", 10}, {"d", 30}, {"e", 5}}
	top := TopN(ties, 3)
	assert.Equal(t, []Bucket{{"b", 30}, {"d", 30}, {"a", 10}}, top)
	assert.Equal(t, "a", ties[0].Key, "input left untouched")
	assert.Len(t, TopN(ties, 0), 5)
}

func TestDailySeriesZeroFills(t *testing.T) {
	series := DailySeries(sample(), day("2023-12-31"), day("2024-01-04"))
	require.Len(t, series, 5)
	assert.Equal(t, Bucket{"2023-12-31", 0}, series[0])
	assert.Equal(t, Bucket{"2024-01-01", 5400}, series[1])
	assert.Equal(t, Bucket{"2024-01-04", 0}, series[4])

	assert.Nil(t, DailySeries(sample(), time.Time{}, day("2024-01-04")))
}

func TestHours(t *testing.T) {
	assert.Equal(t, 1.5, Hours(5400))
	assert.Equal(t, 0.33, Hours(1200))
	assert.Equal(t, 0.0, Hours(0))
	assert.Equal(t, 2.5, Bucket{TotalSeconds: 9000}.Hours())
}

func TestSummarize(t *testing.T) {
	entries := sample()
	entries[0].TaskID, entries[1].TaskID, entries[2].TaskID, entries[3].TaskID = 1, 2, 1, 3
	s := Summarize(entries)
	assert.Equal(t, Summary{TotalSeconds: 11400, Entries: 4, Tasks: 3}, s)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("user")
	require.NoError(t, err)
	assert.Equal(t, ByAssignee, d)

	_, err = ParseDimension("color")
	assert.Error(t, err)
}

func TestRangePresets(t *testing.T) {
	// Wednesday.
	now := time.Date(2024, 5, 15, 14, 30, 0, 0, time.UTC)

	s, e := Range(Today, now, time.Monday)
	assert.Equal(t, day("2024-05-15"), s)
	assert.Equal(t, day("2024-05-15"), e)

	s, e = Range(Yesterday, now, time.Monday)
	assert.Equal(t, day("2024-05-14"), s)
	assert.Equal(t, s, e)

	s, e = Range(ThisWeek, now, time.Monday)
	assert.Equal(t, day("2024-05-13"), s)
	assert.Equal(t, day("2024-05-19"), e)

	s, e = Range(ThisWeek, now, time.Sunday)
	assert.Equal(t, day("2024-05-12"), s)
	assert.Equal(t, day("2024-05-18"), e)

	s, e = Range(LastWeek, now, time.Monday)
	assert.Equal(t, day("2024-05-06"), s)
	assert.Equal(t, day("2024-05-12"), e)

	s, e = Range(ThisMonth, now, time.Monday)
	assert.Equal(t, day("2024-05-01"), s)
	assert.Equal(t, day("2024-05-31"), e)

	s, e = Range(LastMonth, time.Date(2024, 3, 31, 8, 0, 0, 0, time.UTC), time.Monday)
	assert.Equal(t, day("2024-02-01"), s)
	assert.Equal(t, day("2024-02-29"), e)

	s, e = Range(Custom, now, time.Monday)
	assert.True(t, s.IsZero())
	assert.True(t, e.IsZero())
}

func TestRangeOnWeekStartDay(t *testing.T) {
	monday := time.Date(2024, 5, 13, 0, 0, 1, 0, time.UTC)
	s, _ := Range(ThisWeek, monday, time.Monday)
	assert.Equal(t, day("2024-05-13"), s)
}

func TestParsePreset(t *testing.T) {
	p, err := ParsePreset("last-week")
	require.NoError(t, err)
	assert.Equal(t, LastWeek, p)

	p, err = ParsePreset("This Month")
	require.NoError(t, err)
	assert.Equal(t, ThisMonth, p)

	_, err = ParsePreset("fortnight")
	assert.Error(t, err)

	assert.Equal(t, time.Sunday, ParseWeekStart("sunday"))
	assert.Equal(t, time.Monday, ParseWeekStart(""))
}

func TestEndOfDay(t *testing.T) {
	e := EndOfDay(at("2024-01-01T08:00:00"))
	assert.Equal(t, 23, e.Hour())
	assert.Equal(t, 59, e.Second())
	assert.True(t, e.Before(day("2024-01-02")))
	assert.True(t, e.After(at("2024-01-01T23:59:59")))
}

type fakeSource struct {
	lookupFunc
	entries []tracking.TimeEntry
	queries []tracking.EntryQuery
	err     error
}

func (f *fakeSource) QueryEntries(_ context.Context, q tracking.EntryQuery) ([]tracking.TimeEntry, error) {
	f.queries = append(f.queries, q)
	return f.entries, f.err
}

func TestLoad(t *testing.T) {
	src := &fakeSource{
		lookupFunc: func(_ context.Context, id int64) (tracking.TaskInfo, error) {
			if id == 1 {
				return tracking.TaskInfo{ID: 1, Title: "Design", Project: "Web"}, nil
			}
			return tracking.TaskInfo{ID: id, Title: "Write", Project: "Docs"}, nil
		},
		entries: []tracking.TimeEntry{
			{ID: "a", TaskID: 1, StartTime: at("2024-01-02T09:00:00"), Duration: 60},
			{ID: "b", TaskID: 2, StartTime: at("2024-01-02T10:00:00"), Duration: 60},
		},
	}

	got, err := Load(context.Background(), src, Filter{Start: day("2024-01-01"), End: day("2024-01-07"), Project: "Web"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Design", got[0].TaskTitle)

	require.Len(t, src.queries, 1)
	q := src.queries[0]
	require.NotNil(t, q.From)
	require.NotNil(t, q.To)
	assert.Equal(t, day("2024-01-01"), *q.From)
	assert.Equal(t, day("2024-01-08"), *q.To, "end day is covered up to the next midnight")
}

func TestLoadOpenRange(t *testing.T) {
	src := &fakeSource{lookupFunc: func(context.Context, int64) (tracking.TaskInfo, error) {
		return tracking.TaskInfo{}, nil
	}}
	_, err := Load(context.Background(), src, Filter{})
	require.NoError(t, err)
	assert.Nil(t, src.queries[0].From)
	assert.Nil(t, src.queries[0].To)

	src.err = errors.New("locked")
	_, err = Load(context.Background(), src, Filter{})
	require.ErrorIs(t, err, src.err)
}
