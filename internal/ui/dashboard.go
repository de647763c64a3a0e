package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/emoji"
	"github.com/yildizm/nexus/internal/timeline"
	"github.com/yildizm/nexus/internal/ui/components"
)

// Options configures the dashboard
type Options struct {
	// ModelName is shown in the footer tag
	ModelName string
}

// Dashboard is the interactive console: pitch input on the left, the agent
// terminal under it and the dossier on the right.
type Dashboard struct {
	ctrl        *controller.Controller
	ctx         context.Context
	cancel      context.CancelFunc
	updates     <-chan controller.Update
	unsubscribe func()

	state     controller.State
	styles    *Styles
	modelName string

	input    textarea.Model
	filePath textinput.Model
	spinner  spinner.Model
	results  viewport.Model

	focus    Focus
	width    int
	height   int
	ready    bool
	quitting bool
	notice   string
}

// NewDashboard subscribes to ctrl and seeds the input from its current state
func NewDashboard(ctx context.Context, ctrl *controller.Controller, opts Options) *Dashboard {
	ctx, cancel := context.WithCancel(ctx)
	updates, unsubscribe := ctrl.Subscribe()
	state := ctrl.Snapshot()

	ta := textarea.New()
	ta.Placeholder = "Paste a pitch, founder bio or traction summary..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetWidth(60)
	ta.SetHeight(6)
	ta.SetValue(state.Text)
	ta.Focus()

	fi := textinput.New()
	fi.Placeholder = "path/to/deck.pdf"
	fi.Prompt = emoji.GetEmoji("file") + " "

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	styles := GetStyles()
	sp.Style = lipgloss.NewStyle().Foreground(styles.Theme.Warning)

	return &Dashboard{
		ctrl:        ctrl,
		ctx:         ctx,
		cancel:      cancel,
		updates:     updates,
		unsubscribe: unsubscribe,
		state:       state,
		styles:      styles,
		modelName:   opts.ModelName,
		input:       ta,
		filePath:    fi,
		spinner:     sp,
		results:     viewport.New(60, 20),
		focus:       FocusInput,
	}
}

// Init starts the spinner, the cursor blink and the update listener
func (m *Dashboard) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		waitForUpdate(m.updates),
	)
}

// Update handles messages
func (m *Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowResize(msg)
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case stateUpdateMsg:
		m.refresh()
		return m, waitForUpdate(m.updates)
	case subscriptionClosedMsg:
		return m, nil
	case runFinishedMsg:
		m.notice = describeRunError(msg.err)
		m.refresh()
		return m, nil
	case fileAttachedMsg:
		if msg.err != nil {
			m.notice = emoji.GetEmoji("error") + " " + msg.err.Error()
		} else {
			m.notice = emoji.GetEmoji("file") + " attached " + msg.name
		}
		m.refresh()
		return m, nil
	}

	return m, nil
}

func (m *Dashboard) handleWindowResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.ready = true

	left, right := m.columnWidths()
	m.input.SetWidth(left - 4)
	m.filePath.Width = left - 8
	m.results.Width = right - 4
	m.results.Height = max(msg.Height-8, 10)
	m.refresh()
	return m, nil
}

func (m *Dashboard) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m.quit()
	case "esc":
		if m.focus == FocusFilePrompt {
			m.setFocus(FocusInput)
			return m, nil
		}
		return m.quit()
	case "ctrl+r", "ctrl+s":
		return m, m.run()
	case "ctrl+o":
		m.setFocus(FocusFilePrompt)
		return m, textinput.Blink
	case "ctrl+x":
		m.ctrl.ClearFile()
		m.notice = ""
		m.refresh()
		return m, nil
	case "tab":
		if m.focus == FocusResults {
			m.setFocus(FocusInput)
		} else if m.focus == FocusInput {
			m.setFocus(FocusResults)
		}
		return m, nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case FocusFilePrompt:
		if msg.Type == tea.KeyEnter {
			path := strings.TrimSpace(m.filePath.Value())
			m.filePath.SetValue("")
			m.setFocus(FocusInput)
			if path == "" {
				return m, nil
			}
			return m, m.attach(path)
		}
		m.filePath, cmd = m.filePath.Update(msg)
	case FocusResults:
		if msg.String() == "q" {
			return m.quit()
		}
		m.results, cmd = m.results.Update(msg)
	default:
		before := m.input.Value()
		m.input, cmd = m.input.Update(msg)
		if value := m.input.Value(); value != before {
			m.ctrl.SetText(value)
		}
	}
	return m, cmd
}

func (m *Dashboard) run() tea.Cmd {
	m.ctrl.SetText(m.input.Value())
	m.notice = ""
	return startRun(m.ctx, m.ctrl)
}

func (m *Dashboard) attach(path string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		file, err := analyzer.LoadFileInput(path)
		if err != nil {
			return fileAttachedMsg{name: path, err: err}
		}
		ctrl.AttachFile(*file)
		return fileAttachedMsg{name: file.Name}
	}
}

func (m *Dashboard) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.cancel()
	m.unsubscribe()
	return m, tea.Quit
}

func (m *Dashboard) setFocus(f Focus) {
	m.focus = f
	m.input.Blur()
	m.filePath.Blur()
	switch f {
	case FocusInput:
		m.input.Focus()
	case FocusFilePrompt:
		m.filePath.Focus()
	}
}

// refresh re-reads controller state and re-renders the dossier
func (m *Dashboard) refresh() {
	m.state = m.ctrl.Snapshot()
	m.results.SetContent(renderDossier(m.state.Result, m.results.Width, m.styles))
}

func (m *Dashboard) columnWidths() (int, int) {
	if m.width < 100 {
		return m.width, m.width
	}
	left := m.width * 2 / 5
	return left, m.width - left
}

// View renders the dashboard
func (m *Dashboard) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return m.styles.Muted.Render("Initializing Nexus-9...")
	}

	left, right := m.columnWidths()
	leftCol := lipgloss.JoinVertical(lipgloss.Left, m.renderInput(left), m.renderTerminal(left))

	panel := m.styles.Panel
	if m.focus == FocusResults {
		panel = m.styles.Focused
	}
	rightCol := panel.Width(right - 2).Render(m.results.View())

	var body string
	if m.width < 100 {
		body = lipgloss.JoinVertical(lipgloss.Left, leftCol, rightCol)
	} else {
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftCol, rightCol)
	}

	sections := []string{m.renderHeader()}
	if m.state.ConfigMissing {
		msg := emoji.GetEmoji("key") + " API key missing: set API_KEY or GEMINI_API_KEY, or ai.api_key in the config file"
		sections = append(sections, m.styles.Banner.Render(msg))
	}
	sections = append(sections, body)
	if m.notice != "" {
		sections = append(sections, m.notice)
	}
	sections = append(sections, m.renderHelp())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Dashboard) renderHeader() string {
	title := m.styles.Title.Render(emoji.GetEmoji("rocket") + " NEXUS-9 // Due Diligence Console")
	if m.modelName == "" {
		return title
	}
	return title + m.styles.Muted.Render("["+m.modelName+"]")
}

func (m *Dashboard) renderInput(width int) string {
	panel := m.styles.Panel
	if m.focus == FocusInput || m.focus == FocusFilePrompt {
		panel = m.styles.Focused
	}

	lines := []string{m.styles.Header.Render("Pitch Input"), m.input.View()}

	switch {
	case m.focus == FocusFilePrompt:
		lines = append(lines, m.filePath.View())
	case m.state.File != nil:
		name := m.state.File.Name
		if name == "" {
			name = "attachment"
		}
		lines = append(lines, m.styles.Pill.Render(fmt.Sprintf("%s %s (%s)", emoji.GetEmoji("file"), name, m.state.File.MIMEType)))
	default:
		lines = append(lines, m.styles.Muted.Render("No file attached (ctrl+o)"))
	}

	if m.state.Busy {
		lines = append(lines, m.spinner.View()+m.styles.Warning.Render(" Analyzing... ")+
			components.NewStageProgress(16, len(m.state.Logs), timeline.StageEvents).Render())
	} else {
		lines = append(lines, m.styles.Muted.Render("ctrl+r to analyze"))
	}

	return panel.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m *Dashboard) renderTerminal(width int) string {
	term := components.NewAgentTerminal("Agent Terminal", m.state.Logs, width-2, timeline.StageEvents+4)
	if m.state.Busy {
		term.Cursor = "_"
	}
	return term.Render()
}

func (m *Dashboard) renderHelp() string {
	return m.styles.Muted.Render("ctrl+r analyze • ctrl+o attach • ctrl+x clear file • tab focus • esc quit")
}

// describeRunError turns a Run outcome into a one-line notice
func describeRunError(err error) string {
	switch {
	case err == nil:
		return emoji.GetEmoji("success") + " Analysis complete"
	case errors.Is(err, controller.ErrBusy):
		return emoji.GetEmoji("warning") + " An analysis is already running"
	case errors.Is(err, controller.ErrNoInput):
		return emoji.GetEmoji("warning") + " Provide a description or attach a file first"
	case errors.Is(err, controller.ErrConfigMissing):
		return emoji.GetEmoji("key") + " Configure an API key before analyzing"
	case ai.IsUpstreamError(err):
		return emoji.GetEmoji("error") + " Model call failed: " + err.Error()
	case ai.IsParseError(err):
		return emoji.GetEmoji("error") + " Model reply could not be read: " + err.Error()
	case errors.Is(err, context.Canceled):
		return emoji.GetEmoji("warning") + " Analysis canceled"
	default:
		return emoji.GetEmoji("error") + " " + err.Error()
	}
}

// RunDashboard runs the dashboard until the user quits or ctx is done
func RunDashboard(ctx context.Context, ctrl *controller.Controller, opts Options) error {
	model := NewDashboard(ctx, ctrl, opts)
	defer model.cancel()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
