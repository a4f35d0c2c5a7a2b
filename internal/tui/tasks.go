package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/tasktime/internal/store"
)

var projectColors = []string{"#6C63FF", "#2EC4B6", "#FF6B6B", "#F39C12", "#2ECC71", "#E74C3C", "#9B59B6", "#3498DB"}
var projectCategories = []string{"work", "personal", "learning", "freelance", "other"}

type formKind int

const (
	formNewProject formKind = iota
	formEditProject
	formNewTask
	formEditTask
)

type tasksModel struct {
	store  *store.Store
	width  int
	height int

	projects     []store.Project
	tasks        []store.Task
	cursor       int
	taskCursor   int
	viewingTasks bool // true = viewing tasks of selected project

	formActive bool
	form       *huh.Form
	formKind   formKind
	editingID  int64

	// Form field pointers (survive value copies)
	formName     *string
	formColor    *string
	formCategory *string
	formAssignee *string
	formPriority *string
	formStatus   *string
	formTags     *string
}

func newTasksModel(s *store.Store) tasksModel {
	name, color, cat := "", projectColors[0], ""
	assignee, priority, status, tags := "", "", "", ""
	return tasksModel{
		store:        s,
		formName:     &name,
		formColor:    &color,
		formCategory: &cat,
		formAssignee: &assignee,
		formPriority: &priority,
		formStatus:   &status,
		formTags:     &tags,
	}
}

func (p *tasksModel) setSize(w, h int) {
	p.width = w
	p.height = h
}

type projectsDataMsg struct {
	projects []store.Project
}

type tasksDataMsg struct {
	tasks []store.Task
}

func (p tasksModel) refresh() tea.Cmd {
	return func() tea.Msg {
		projects, err := p.store.ListProjects(false)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load projects: %v", err), isError: true}
		}
		return projectsDataMsg{projects: projects}
	}
}

func (p tasksModel) refreshTasks() tea.Cmd {
	if p.cursor >= len(p.projects) {
		return nil
	}
	pid := p.projects[p.cursor].ID
	return func() tea.Msg {
		tasks, err := p.store.ListTasks(pid, false)
		if err != nil {
			return statusMsg{text: fmt.Sprintf("Load tasks: %v", err), isError: true}
		}
		return tasksDataMsg{tasks: tasks}
	}
}

func (p tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if p.formActive && p.form != nil {
		return p.updateForm(msg)
	}

	switch msg := msg.(type) {
	case projectsDataMsg:
		p.projects = msg.projects
		if p.cursor >= len(p.projects) {
			p.cursor = max(0, len(p.projects)-1)
		}
		if len(p.projects) == 0 {
			p.viewingTasks = false
		}
		return p, nil

	case tasksDataMsg:
		p.tasks = msg.tasks
		if p.taskCursor >= len(p.tasks) {
			p.taskCursor = max(0, len(p.tasks)-1)
		}
		return p, nil

	case tea.KeyMsg:
		if p.viewingTasks {
			return p.updateTaskView(msg)
		}
		return p.updateProjectList(msg)
	}
	return p, nil
}

func (p tasksModel) updateProjectList(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if p.cursor > 0 {
			p.cursor--
		}
	case key.Matches(msg, keys.Down):
		if p.cursor < len(p.projects)-1 {
			p.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(p.projects) > 0 {
			p.viewingTasks = true
			p.taskCursor = 0
			return p, p.refreshTasks()
		}
	case key.Matches(msg, keys.New):
		return p.showProjectForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(p.projects) > 0 {
			return p.showProjectForm(&p.projects[p.cursor])
		}
	case key.Matches(msg, keys.Delete):
		if len(p.projects) > 0 {
			if err := p.store.ArchiveProject(p.projects[p.cursor].ID); err != nil {
				return p, errorCmd("Archive failed", err)
			}
			return p, p.refresh()
		}
	}
	return p, nil
}

func (p tasksModel) updateTaskView(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		p.viewingTasks = false
		return p, nil
	case key.Matches(msg, keys.Up):
		if p.taskCursor > 0 {
			p.taskCursor--
		}
	case key.Matches(msg, keys.Down):
		if p.taskCursor < len(p.tasks)-1 {
			p.taskCursor++
		}
	case key.Matches(msg, keys.New):
		return p.showTaskForm(nil)
	case key.Matches(msg, keys.Edit):
		if len(p.tasks) > 0 {
			return p.showTaskForm(&p.tasks[p.taskCursor])
		}
	case key.Matches(msg, keys.Start), key.Matches(msg, keys.Enter):
		if len(p.tasks) > 0 {
			id := p.tasks[p.taskCursor].ID
			return p, func() tea.Msg { return startTaskMsg{taskID: id} }
		}
	case key.Matches(msg, keys.Delete):
		if len(p.tasks) > 0 {
			if err := p.store.ArchiveTask(p.tasks[p.taskCursor].ID); err != nil {
				return p, errorCmd("Archive failed", err)
			}
			return p, p.refreshTasks()
		}
	}
	return p, nil
}

// showProjectForm opens the project form, prefilled from proj when editing.
func (p tasksModel) showProjectForm(proj *store.Project) (tasksModel, tea.Cmd) {
	*p.formName = ""
	*p.formColor = projectColors[0]
	*p.formCategory = "work"
	p.formKind = formNewProject
	if proj != nil {
		*p.formName = proj.Name
		*p.formColor = proj.Color
		*p.formCategory = proj.Category
		p.formKind = formEditProject
		p.editingID = proj.ID
	}

	colorOptions := make([]huh.Option[string], len(projectColors))
	for i, c := range projectColors {
		colorOptions[i] = huh.NewOption(fmt.Sprintf("● %s", c), c)
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Project Name").Value(p.formName).Validate(required),
			huh.NewSelect[string]().Title("Color").Options(colorOptions...).Value(p.formColor),
			huh.NewSelect[string]().Title("Category").Options(huh.NewOptions(projectCategories...)...).Value(p.formCategory),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

// showTaskForm opens the task form, prefilled from task when editing.
func (p tasksModel) showTaskForm(task *store.Task) (tasksModel, tea.Cmd) {
	*p.formName, *p.formAssignee, *p.formTags = "", "", ""
	*p.formPriority = "Medium"
	*p.formStatus = "To Do"
	p.formKind = formNewTask
	if task != nil {
		*p.formName = task.Title
		*p.formAssignee = task.Assignee
		*p.formPriority = task.Priority
		*p.formStatus = task.Status
		*p.formTags = task.Tags
		p.formKind = formEditTask
		p.editingID = task.ID
	}

	p.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(p.formName).Validate(required),
			huh.NewInput().Title("Assignee").Value(p.formAssignee),
			huh.NewSelect[string]().Title("Priority").Options(huh.NewOptions(store.Priorities...)...).Value(p.formPriority),
			huh.NewSelect[string]().Title("Status").Options(huh.NewOptions(store.Statuses...)...).Value(p.formStatus),
			huh.NewInput().Title("Tags (comma-separated)").Value(p.formTags),
		),
	).WithShowHelp(true).WithShowErrors(true)

	p.formActive = true
	return p, p.form.Init()
}

func required(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

func (p tasksModel) taskInput() store.TaskInput {
	return store.TaskInput{
		Title:    *p.formName,
		Assignee: *p.formAssignee,
		Priority: *p.formPriority,
		Status:   *p.formStatus,
		Tags:     *p.formTags,
	}
}

func (p tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			p.formActive = false
			p.form = nil
			return p, nil
		}
	}

	form, cmd := p.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		p.form = f
	}

	if p.form.State != huh.StateCompleted {
		return p, cmd
	}

	p.formActive = false
	var err error
	switch p.formKind {
	case formNewProject:
		_, err = p.store.CreateProject(strings.TrimSpace(*p.formName), *p.formColor, *p.formCategory)
	case formEditProject:
		err = p.store.UpdateProject(p.editingID, strings.TrimSpace(*p.formName), *p.formColor, *p.formCategory)
	case formNewTask:
		if p.cursor < len(p.projects) {
			_, err = p.store.CreateTask(p.projects[p.cursor].ID, p.taskInput())
		}
	case formEditTask:
		err = p.store.UpdateTask(p.editingID, p.taskInput())
	}
	if err != nil {
		return p, errorCmd("Save failed", err)
	}
	if p.formKind == formNewTask || p.formKind == formEditTask {
		return p, p.refreshTasks()
	}
	return p, p.refresh()
}

func (p tasksModel) view() string {
	if p.formActive && p.form != nil {
		titles := map[formKind]string{
			formNewProject:  "New Project",
			formEditProject: "Edit Project",
			formNewTask:     "New Task",
			formEditTask:    "Edit Task",
		}
		title := titleStyle.Render(titles[p.formKind])
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", p.form.View())
		return panelStyle.Width(p.width - 4).Render(content)
	}

	if p.viewingTasks && p.cursor < len(p.projects) {
		return p.renderTaskView()
	}
	return p.renderProjectList()
}

func (p tasksModel) renderProjectList() string {
	w := p.width - 4
	title := titleStyle.Render("Projects")

	if len(p.projects) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No projects yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-3s %-24s %-12s %8s", "", "Name", "Category", "Tracked")))

	for i, proj := range p.projects {
		colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(proj.Color)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %-24s %-12s %8s",
			cursor, colorDot, truncate(proj.Name, 24), proj.Category, formatHours(proj.TrackedSeconds))))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: archive  enter: tasks"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (p tasksModel) renderTaskView() string {
	w := p.width - 4
	proj := p.projects[p.cursor]
	colorDot := lipgloss.NewStyle().Foreground(lipgloss.Color(proj.Color)).Render("●")
	title := titleStyle.Render(fmt.Sprintf("%s %s: Tasks", colorDot, proj.Name))

	if len(p.tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %-16s %-8s %-12s", "Task", "Assignee", "Priority", "Status")))

	for i, task := range p.tasks {
		cursor := "  "
		style := normalItemStyle
		if i == p.taskCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		line := style.Render(fmt.Sprintf("%s%-28s %-16s ", cursor, truncate(task.Title, 28), truncate(task.Assignee, 16))) +
			priorityStyle(task.Priority).Render(fmt.Sprintf("%-8s", task.Priority)) +
			style.Render(fmt.Sprintf(" %-12s", task.Status))
		if task.Tags != "" {
			line += mutedStyle.Render(" [" + task.Tags + "]")
		}
		rows = append(rows, line)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  s/enter: start timer  n: new  e: edit  d: archive  esc: back"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
