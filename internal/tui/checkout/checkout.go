// ABOUTME: Multi-step checkout form as a bubbletea model
// ABOUTME: Pick tasks worked, record progress per task, add shift notes, then emit the request

package checkout

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/timetrack/timesheet-cli/internal/client"
	"github.com/timetrack/timesheet-cli/internal/tui/icons"
	"github.com/timetrack/timesheet-cli/internal/tui/styles"
)

// CompleteMsg is sent when the form finishes successfully
type CompleteMsg struct {
	Request *client.CheckoutRequest
}

// CancelledMsg is sent when the form is cancelled
type CancelledMsg struct{}

// Step identifies a form stage
type Step int

const (
	StepTasks Step = iota + 1
	StepProgress
	StepNotes
)

var stepNames = []string{"Tasks Worked", "Progress", "Notes"}

// entry holds the string form values for one task
type entry struct {
	task    client.Task
	percent string
	note    string
}

// Form collects checkout details across three steps
type Form struct {
	tasks    []client.Task
	form     *huh.Form
	step     Step
	width    int
	selected []string
	entries  []*entry
	notes    string
}

// New creates a checkout form over the user's open tasks. With no open
// tasks it starts directly at the notes step.
func New(tasks []client.Task, width int) *Form {
	f := &Form{tasks: tasks, width: width, step: StepTasks}
	if len(tasks) == 0 {
		f.step = StepNotes
	}
	f.form = f.buildStep()
	return f
}

// Step returns the active step
func (f *Form) Step() Step {
	return f.step
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		return f, func() tea.Msg { return CancelledMsg{} }
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	switch f.form.State {
	case huh.StateCompleted:
		return f.advance()
	case huh.StateAborted:
		return f, func() tea.Msg { return CancelledMsg{} }
	}
	return f, cmd
}

func (f *Form) advance() (tea.Model, tea.Cmd) {
	switch f.step {
	case StepTasks:
		f.entries = f.entriesFor(f.selected)
		if len(f.entries) == 0 {
			f.step = StepNotes
		} else {
			f.step = StepProgress
		}
		f.form = f.buildStep()
		return f, f.form.Init()

	case StepProgress:
		f.step = StepNotes
		f.form = f.buildStep()
		return f, f.form.Init()

	default:
		req := f.Request()
		return f, func() tea.Msg { return CompleteMsg{Request: req} }
	}
}

// entriesFor keeps earlier input for tasks that stay selected
func (f *Form) entriesFor(ids []string) []*entry {
	prev := make(map[string]*entry, len(f.entries))
	for _, e := range f.entries {
		prev[e.task.ID] = e
	}

	var out []*entry
	for _, id := range ids {
		if e, ok := prev[id]; ok {
			out = append(out, e)
			continue
		}
		for _, t := range f.tasks {
			if t.ID == id {
				out = append(out, &entry{task: t})
				break
			}
		}
	}
	return out
}

// Request builds the checkout payload. Entries without a task or a
// positive percent are dropped.
func (f *Form) Request() *client.CheckoutRequest {
	work := make([]client.TaskWork, 0, len(f.entries))
	for _, e := range f.entries {
		pct, _ := strconv.Atoi(strings.TrimSpace(e.percent))
		work = append(work, client.TaskWork{
			TaskID:       e.task.ID,
			PercentAdded: pct,
			Note:         strings.TrimSpace(e.note),
		})
	}
	return &client.CheckoutRequest{
		TasksWorked: KeepComplete(work),
		Notes:       strings.TrimSpace(f.notes),
	}
}

// KeepComplete drops task work entries missing a task id or a percent
func KeepComplete(work []client.TaskWork) []client.TaskWork {
	out := make([]client.TaskWork, 0, len(work))
	for _, w := range work {
		if w.TaskID == "" || w.PercentAdded <= 0 {
			continue
		}
		out = append(out, w)
	}
	return out
}

func (f *Form) buildStep() *huh.Form {
	var group *huh.Group

	switch f.step {
	case StepTasks:
		opts := make([]huh.Option[string], 0, len(f.tasks))
		for _, t := range f.tasks {
			label := fmt.Sprintf("%s (%d%%)", t.Description, t.CompletionPercent)
			opts = append(opts, huh.NewOption(label, t.ID))
		}
		group = huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Which tasks did you work on?").
				Description("Space to toggle, Enter to continue").
				Options(opts...).
				Value(&f.selected),
		).Title("Step 1: Tasks Worked")

	case StepProgress:
		var fields []huh.Field
		for _, e := range f.entries {
			fields = append(fields,
				huh.NewInput().
					Title(e.task.Description).
					Description(fmt.Sprintf("Currently %d%%. Progress added today (%%)", e.task.CompletionPercent)).
					Placeholder("1-100").
					CharLimit(3).
					Value(&e.percent).
					Validate(validateOptionalPercent),
				huh.NewInput().
					Title("Note").
					Placeholder("optional").
					Value(&e.note),
			)
		}
		group = huh.NewGroup(fields...).Title("Step 2: Progress")

	default:
		group = huh.NewGroup(
			huh.NewText().
				Title("Shift notes").
				Description("Anything worth recording about today (optional)").
				Lines(4).
				Value(&f.notes),
		).Title("Step 3: Notes")
	}

	return huh.NewForm(group).
		WithTheme(styles.FormTheme()).
		WithShowHelp(false).
		WithWidth(min(max(40, f.width), 80))
}

// Retry rebuilds the current step so a failed submit can be sent again.
// Entered values are kept.
func (f *Form) Retry() tea.Cmd {
	f.form = f.buildStep()
	return f.form.Init()
}

// SetWidth sets the form width for proper rendering
func (f *Form) SetWidth(width int) {
	f.width = width
	f.form = f.form.WithWidth(min(max(40, width), 80))
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder
	sb.WriteString(f.renderProgress())
	sb.WriteString("\n\n")
	sb.WriteString(f.form.View())
	return sb.String()
}

// renderProgress renders the step progress indicator
func (f *Form) renderProgress() string {
	width := max(50, min(f.width, 80))

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		n := Step(i + 1)
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case n < f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case n == f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}
		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" is 5 columns of chrome
	barWidth := width - 5
	filled := int(f.step) * barWidth / len(stepNames)
	bar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filled)) +
		lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filled))

	title := "Check Out"
	top := "┌─ " + titleStyle.Render(title) + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(title))) + "┐"
	stepsPad := max(0, width-4-lipgloss.Width(stepsLine))
	middle := "│ " + stepsLine + strings.Repeat(" ", stepsPad) + " │"
	progress := "│  " + bar + " │"
	bottom := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{top, middle, progress, bottom}, "\n"))
}

func validateOptionalPercent(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 100 {
		return fmt.Errorf("must be a number from 1 to 100")
	}
	return nil
}
