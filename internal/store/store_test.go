package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/tasktime/internal/report"
	"github.com/sadopc/tasktime/internal/tracking"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewMemory()
	require.NoError(t, err, "new memory store")
	t.Cleanup(func() { s.Close() })
	return s
}

func seedTask(t *testing.T, s *Store, project, title string) *Task {
	t.Helper()
	var projectID int64
	projects, _ := s.ListProjects(true)
	for _, p := range projects {
		if p.Name == project {
			projectID = p.ID
		}
	}
	if projectID == 0 {
		p, err := s.CreateProject(project, "#6C63FF", "work")
		require.NoError(t, err, "create project")
		projectID = p.ID
	}
	task, err := s.CreateTask(projectID, TaskInput{Title: title, Assignee: "Alex", Priority: "High", Tags: "UI, Design"})
	require.NoError(t, err, "create task")
	return task
}

// insertEntry stores an entry that started offset before base and lasted secs.
func insertEntry(t *testing.T, s *Store, taskID int64, base time.Time, offset time.Duration, secs int64) tracking.TimeEntry {
	t.Helper()
	start := base.Add(-offset)
	e := tracking.NewEntry(taskID, start, start.Add(time.Duration(secs)*time.Second), "")
	_, err := s.CreateEntry(context.Background(), e)
	require.NoError(t, err, "insert entry")
	return e
}

// withLocal runs the rest of the test with zone as the local time zone.
func withLocal(t *testing.T, zone *time.Location) {
	t.Helper()
	orig := time.Local
	time.Local = zone
	t.Cleanup(func() { time.Local = orig })
}

// ============================================================
// Store initialization
// ============================================================

func TestNewMemory(t *testing.T) {
	s := newTestStore(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentVersion, version)
}

func TestNewWithPath(t *testing.T) {
	path := t.TempDir() + "/sub/tasktime.db"
	s, err := New(path)
	require.NoError(t, err)
	s.Close()

	s2, err := New(path)
	require.NoError(t, err, "reopening an existing database")
	s2.Close()
}

func TestForeignKeysEnabled(t *testing.T) {
	s := newTestStore(t)
	var fk int
	require.NoError(t, s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestMigrationIdempotent(t *testing.T) {
	s := newTestStore(t)
	assert.NoError(t, s.migrate(), "second migration")
}

// ============================================================
// Projects
// ============================================================

func TestCreateAndGetProject(t *testing.T) {
	s := newTestStore(t)
	p, err := s.CreateProject("  Website Redesign ", "#FF0000", "work")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Equal(t, "Website Redesign", p.Name)
	assert.False(t, p.Archived)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Zero(t, p.TrackedSeconds)
}

func TestCreateProjectValidation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateProject("   ", "#111", "work")
	assert.ErrorIs(t, err, tracking.ErrValidation)

	_, err = s.CreateProject("Dup", "#111", "work")
	require.NoError(t, err)
	_, err = s.CreateProject("Dup", "#222", "personal")
	assert.Error(t, err, "duplicate project name")
}

func TestGetProjectNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetProject(9999)
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestArchiveProjectHidesIt(t *testing.T) {
	s := newTestStore(t)
	a, _ := s.CreateProject("A", "#111", "work")
	s.CreateProject("B", "#222", "work")
	require.NoError(t, s.ArchiveProject(a.ID))

	active, _ := s.ListProjects(false)
	require.Len(t, active, 1)
	assert.Equal(t, "B", active[0].Name)
	all, _ := s.ListProjects(true)
	assert.Len(t, all, 2)

	assert.ErrorIs(t, s.ArchiveProject(9999), ErrProjectNotFound)
}

func TestUpdateProject(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("Old", "#111", "work")
	require.NoError(t, s.UpdateProject(p.ID, "New", "#222", "personal"))

	got, err := s.GetProject(p.ID)
	require.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	assert.Equal(t, "#222", got.Color)
	assert.Equal(t, "personal", got.Category)

	assert.ErrorIs(t, s.UpdateProject(p.ID, " ", "#222", "personal"), tracking.ErrValidation)
	assert.ErrorIs(t, s.UpdateProject(9999, "X", "#222", "work"), ErrProjectNotFound)
}

func TestProjectTrackedSeconds(t *testing.T) {
	s := newTestStore(t)
	design := seedTask(t, s, "Web", "Design")
	docs := seedTask(t, s, "Web", "Docs")
	search := seedTask(t, s, "Mobile", "Search")
	seedTask(t, s, "Idle", "Nothing")
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	insertEntry(t, s, design.ID, base, time.Hour, 1800)
	insertEntry(t, s, docs.ID, base, 2*time.Hour, 600)
	insertEntry(t, s, search.ID, base, 0, 3600)
	require.NoError(t, s.ArchiveTask(docs.ID))

	projects, err := s.ListProjects(false)
	require.NoError(t, err)
	totals := make(map[string]int64)
	for _, p := range projects {
		totals[p.Name] = p.TrackedSeconds
	}
	assert.Equal(t, map[string]int64{"Idle": 0, "Mobile": 3600, "Web": 2400}, totals)

	web, err := s.GetProject(design.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, int64(2400), web.TrackedSeconds)
}

// ============================================================
// Tasks
// ============================================================

func TestCreateTaskDefaultsAndTags(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("Mobile", "#111", "work")
	task, err := s.CreateTask(p.ID, TaskInput{Title: "  Fix search  ", Tags: " Bug ,, Frontend "})
	require.NoError(t, err)
	assert.Equal(t, "Fix search", task.Title)
	assert.Equal(t, "Medium", task.Priority)
	assert.Equal(t, "To Do", task.Status)
	assert.Equal(t, "Bug,Frontend", task.Tags)
}

func TestCreateTaskDuplicateTitleSameProject(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "#111", "work")
	s.CreateTask(p.ID, TaskInput{Title: "Dup"})
	_, err := s.CreateTask(p.ID, TaskInput{Title: "Dup"})
	assert.Error(t, err, "duplicate task title in project")

	q, _ := s.CreateProject("Q", "#222", "work")
	_, err = s.CreateTask(q.ID, TaskInput{Title: "Dup"})
	assert.NoError(t, err, "same title in another project")
}

func TestCreateTaskInvalidProject(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateTask(9999, TaskInput{Title: "Orphan"})
	assert.Error(t, err, "foreign key")
}

func TestUpdateTask(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	err := s.UpdateTask(task.ID, TaskInput{Title: "Design v2", Assignee: "Morgan", Priority: "Urgent", Status: "Review", Tags: "UI"})
	require.NoError(t, err)

	got, err := s.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design v2", got.Title)
	assert.Equal(t, "Morgan", got.Assignee)
	assert.Equal(t, "Review", got.Status)
	assert.Equal(t, "Urgent", got.Priority)

	assert.ErrorIs(t, s.UpdateTask(9999, TaskInput{Title: "x"}), tracking.ErrTaskNotFound)
}

func TestListTasksAndArchive(t *testing.T) {
	s := newTestStore(t)
	a := seedTask(t, s, "Web", "B task")
	seedTask(t, s, "Web", "A task")
	seedTask(t, s, "Docs", "Write")

	tasks, err := s.ListTasks(a.ProjectID, false)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "A task", tasks[0].Title, "sorted by title")

	s.ArchiveTask(a.ID)
	tasks, _ = s.ListTasks(a.ProjectID, false)
	assert.Len(t, tasks, 1, "archived task still listed")
	all, _ := s.ListAllTasks()
	assert.Len(t, all, 2)
}

func TestListAssigneesAndTags(t *testing.T) {
	s := newTestStore(t)
	p, _ := s.CreateProject("P", "#111", "work")
	s.CreateTask(p.ID, TaskInput{Title: "1", Assignee: "Morgan", Tags: "Bug,Backend"})
	s.CreateTask(p.ID, TaskInput{Title: "2", Assignee: "Alex", Tags: "Backend"})
	s.CreateTask(p.ID, TaskInput{Title: "3", Assignee: "Alex"})

	users, err := s.ListAssignees()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alex", "Morgan"}, users)

	tags, err := s.ListTags()
	require.NoError(t, err)
	assert.Equal(t, []string{"Backend", "Bug"}, tags)
}

func TestLookupTask(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Website Redesign", "Design dashboard")

	info, err := s.LookupTask(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design dashboard", info.Title)
	assert.Equal(t, "Website Redesign", info.Project)
	assert.Equal(t, "Alex", info.Assignee)
	assert.Equal(t, []string{"UI", "Design"}, info.Tags)

	_, err = s.LookupTask(context.Background(), 9999)
	assert.ErrorIs(t, err, tracking.ErrTaskNotFound)
}

// ============================================================
// Time entries
// ============================================================

func TestCreateAndGetEntry(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	start := time.Date(2024, 1, 15, 9, 30, 0, 123456789, time.UTC)
	e := tracking.NewEntry(task.ID, start, start.Add(20*time.Minute), "pairing")

	id, err := s.CreateEntry(context.Background(), e)
	require.NoError(t, err)
	assert.Equal(t, e.ID, id)

	got, err := s.GetEntry(context.Background(), id)
	require.NoError(t, err)
	assert.True(t, got.StartTime.Equal(e.StartTime), "start changed on round trip")
	assert.True(t, got.EndTime.Equal(e.EndTime), "end changed on round trip")
	assert.Equal(t, int64(1200), got.Duration)
	assert.Equal(t, "pairing", got.Description)
	assert.Equal(t, task.ID, got.TaskID)
}

func TestEntriesLoadInLocalTime(t *testing.T) {
	withLocal(t, time.FixedZone("EST", -5*3600))
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	start := time.Date(2024, 1, 1, 23, 30, 0, 0, time.Local)
	e := insertEntry(t, s, task.ID, start, 0, 600)

	got, err := s.GetEntry(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.StartTime.Location())
	assert.Equal(t, time.Local, got.EndTime.Location())
	assert.Equal(t, 1, got.StartTime.Day())
}

func TestLateEveningEntryStaysOnItsLocalDay(t *testing.T) {
	withLocal(t, time.FixedZone("EST", -5*3600))
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	jan1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	insertEntry(t, s, task.ID, jan1.Add(23*time.Hour+30*time.Minute), 0, 600)

	entries, err := report.Load(context.Background(), s, report.Filter{Start: jan1, End: jan1})
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.Equal(t, map[string]int64{"2024-01-01": 600}, report.GroupBy(entries, report.ByDate))
	assert.Equal(t, []report.Bucket{{Key: "2024-01-01", TotalSeconds: 600}}, report.DailySeries(entries, jan1, jan1))
}

func TestCreateEntryIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	e := tracking.NewEntry(task.ID, time.Now().Add(-time.Hour), time.Now(), "")

	for i := 0; i < 2; i++ {
		_, err := s.CreateEntry(context.Background(), e)
		require.NoError(t, err)
	}
	entries, _ := s.QueryEntries(context.Background(), tracking.EntryQuery{})
	assert.Len(t, entries, 1, "retry must not duplicate")
}

func TestCreateEntryUnknownTask(t *testing.T) {
	s := newTestStore(t)
	e := tracking.NewEntry(9999, time.Now().Add(-time.Minute), time.Now(), "")
	_, err := s.CreateEntry(context.Background(), e)
	assert.Error(t, err, "foreign key")
}

func TestGetEntryNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetEntry(context.Background(), "missing")
	assert.ErrorIs(t, err, tracking.ErrEntryNotFound)
}

func TestQueryEntriesOrderAndLimit(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	insertEntry(t, s, task.ID, base, 3*time.Hour, 60)
	newest := insertEntry(t, s, task.ID, base, time.Hour, 60)
	insertEntry(t, s, task.ID, base, 2*time.Hour, 60)

	entries, err := s.QueryEntries(context.Background(), tracking.EntryQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, newest.ID, entries[0].ID, "newest first")
}

func TestQueryEntriesSubSecondOrdering(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	whole := tracking.NewEntry(task.ID, base, base.Add(time.Minute), "")
	frac := tracking.NewEntry(task.ID, base.Add(500*time.Millisecond), base.Add(time.Minute), "")
	s.CreateEntry(context.Background(), whole)
	s.CreateEntry(context.Background(), frac)

	entries, _ := s.QueryEntries(context.Background(), tracking.EntryQuery{})
	require.NotEmpty(t, entries)
	assert.Equal(t, frac.ID, entries[0].ID, "later fractional start sorts first")
}

func TestQueryEntriesFilters(t *testing.T) {
	s := newTestStore(t)
	a := seedTask(t, s, "Web", "Design")
	b := seedTask(t, s, "Mobile", "Search")
	c := seedTask(t, s, "Docs", "Write")
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	insertEntry(t, s, a.ID, base, 0, 60)
	insertEntry(t, s, b.ID, base, 48*time.Hour, 60)
	insertEntry(t, s, c.ID, base, 0, 60)

	entries, _ := s.QueryEntries(context.Background(), tracking.EntryQuery{TaskIDs: []int64{a.ID, b.ID}})
	assert.Len(t, entries, 2, "task filter")

	from := base.Add(-time.Hour)
	to := base.Add(time.Hour)
	entries, _ = s.QueryEntries(context.Background(), tracking.EntryQuery{From: &from, To: &to})
	assert.Len(t, entries, 2, "date filter")

	to = base
	entries, _ = s.QueryEntries(context.Background(), tracking.EntryQuery{From: &from, To: &to})
	assert.Empty(t, entries, "To is exclusive")
}

func TestDeleteEntry(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	e := insertEntry(t, s, task.ID, time.Now(), time.Hour, 60)

	require.NoError(t, s.DeleteEntry(context.Background(), e.ID))
	assert.ErrorIs(t, s.DeleteEntry(context.Background(), e.ID), tracking.ErrEntryNotFound)
}

func TestTotalSince(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	insertEntry(t, s, task.ID, base, time.Hour, 1800)
	insertEntry(t, s, task.ID, base, 2*time.Hour, 600)
	insertEntry(t, s, task.ID, base, 30*time.Hour, 3600)

	total, err := s.TotalSince(context.Background(), base.Add(-12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2400), total)
}

func TestControllerPersistsThroughStore(t *testing.T) {
	s := newTestStore(t)
	task := seedTask(t, s, "Web", "Design")
	c := tracking.NewController(s)

	_, err := c.Start(context.Background(), task.ID)
	require.NoError(t, err)
	e, err := c.Stop(context.Background())
	require.NoError(t, err)
	require.NotNil(t, e)

	_, err = s.GetEntry(context.Background(), e.ID)
	assert.NoError(t, err, "stopped entry not stored")
}

// ============================================================
// Settings
// ============================================================

func TestSettingsDefaults(t *testing.T) {
	s := newTestStore(t)
	defaults := map[string]string{
		"idle_timeout": "300",
		"idle_action":  "pause",
		"daily_goal":   "28800",
		"week_start":   "monday",
		"top_n":        "10",
	}
	for k, want := range defaults {
		got, err := s.GetSetting(k)
		require.NoError(t, err, k)
		assert.Equal(t, want, got, k)
	}
}

func TestSetSettingOverwrite(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.SetSetting("idle_action", "stop"))
	v, _ := s.GetSetting("idle_action")
	assert.Equal(t, "stop", v)

	s.SetSetting("custom", "x")
	all, _ := s.GetAllSettings()
	assert.Len(t, all, 6)
}

func TestGetSettingNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetSetting("nope")
	assert.Error(t, err)
}

func TestPreferences(t *testing.T) {
	s := newTestStore(t)
	p, err := s.Preferences()
	require.NoError(t, err)
	assert.Equal(t, DefaultPreferences(), p)

	s.SetSetting("idle_timeout", "60")
	s.SetSetting("idle_action", "stop")
	s.SetSetting("week_start", "sunday")
	s.SetSetting("top_n", "bogus")
	p, _ = s.Preferences()
	assert.Equal(t, time.Minute, p.IdleTimeout)
	assert.Equal(t, "stop", p.IdleAction)
	assert.Equal(t, "sunday", p.WeekStart)
	assert.Equal(t, 10, p.TopN, "malformed top_n falls back to default")
}
