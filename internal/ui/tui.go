package ui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Aman-CERP/typeahead/internal/typeahead"
)

const helpLine = "esc clear • enter/tab select • ↑/↓ move • ctrl+r retry • ctrl+c quit"

// TUI is the interactive bubbletea front end.
type TUI struct {
	ctrl Controller
	cfg  Config
}

// NewTUI creates a TUI front end.
// Returns an error if the output is not a terminal.
func NewTUI(ctrl Controller, cfg Config) (*TUI, error) {
	if !IsTTY(cfg.Output) {
		return nil, fmt.Errorf("output is not a TTY")
	}
	return &TUI{ctrl: ctrl, cfg: cfg}, nil
}

// Run implements Frontend.
func (t *TUI) Run(ctx context.Context) error {
	box := newMailbox()
	defer box.close()

	unsubscribe := t.ctrl.Subscribe(box.put)
	defer unsubscribe()

	model := newSearchModel(t.ctrl, box, t.cfg)

	opts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}
	if f, ok := t.cfg.Output.(*os.File); ok {
		opts = append(opts, tea.WithOutput(f))
	}
	if t.cfg.Input != nil {
		opts = append(opts, tea.WithInput(t.cfg.Input))
	}

	_, err := tea.NewProgram(model, opts...).Run()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

// mailbox holds the latest state for the program. put never blocks, so it
// is safe to call from the orchestrator's render path.
type mailbox struct {
	ch   chan typeahead.State
	done chan struct{}
	once sync.Once
}

func newMailbox() *mailbox {
	return &mailbox{
		ch:   make(chan typeahead.State, 1),
		done: make(chan struct{}),
	}
}

// put replaces any undelivered state with s.
func (b *mailbox) put(s typeahead.State) {
	for {
		select {
		case b.ch <- s:
			return
		default:
		}
		select {
		case <-b.ch:
		default:
		}
	}
}

// wait returns a command that delivers the next state as a stateMsg.
func (b *mailbox) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case s := <-b.ch:
			return stateMsg(s)
		case <-b.done:
			return nil
		}
	}
}

func (b *mailbox) close() {
	b.once.Do(func() { close(b.done) })
}

type stateMsg typeahead.State

// searchModel is the bubbletea model for the search box.
type searchModel struct {
	ctrl      Controller
	box       *mailbox
	input     textinput.Model
	spinner   spinner.Model
	styles    Styles
	state     typeahead.State
	cursor    int
	latencies *Sparkline
	width     int
	title     string
	quitting  bool
}

func newSearchModel(ctrl Controller, box *mailbox, cfg Config) *searchModel {
	ti := textinput.New()
	ti.Placeholder = "start typing..."
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	styles := GetStyles(cfg.NoColor)
	ti.PromptStyle = styles.Prompt
	s.Style = styles.Loading

	title := cfg.Title
	if title == "" {
		title = "typeahead"
	}

	return &searchModel{
		ctrl:      ctrl,
		box:       box,
		input:     ti,
		spinner:   s,
		styles:    styles,
		state:     ctrl.State(),
		latencies: NewSparkline(30),
		width:     80,
		title:     title,
	}
}

// Init implements tea.Model.
func (m *searchModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.box.wait())
}

// Update implements tea.Model.
func (m *searchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stateMsg:
		m.applyState(typeahead.State(msg))
		return m, m.box.wait()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *searchModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		m.input.SetValue("")
		m.cursor = 0
		m.ctrl.Clear()
		return m, nil

	case "enter", "tab":
		target := m.highlighted()
		if target == "" && msg.String() == "enter" {
			target = m.input.Value()
		}
		if strings.TrimSpace(target) == "" {
			return m, nil
		}
		m.input.SetValue(target)
		m.input.CursorEnd()
		m.ctrl.SelectSuggestion(target)
		return m, nil

	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case "down", "ctrl+n":
		if m.cursor < len(m.state.Items)-1 {
			m.cursor++
		}
		return m, nil

	case "ctrl+r":
		m.ctrl.Retry()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.ctrl.SetQuery(after)
	}
	return m, cmd
}

// applyState installs a new snapshot from the orchestrator.
func (m *searchModel) applyState(s typeahead.State) {
	prev := m.state
	m.state = s

	if s.Phase == typeahead.PhaseSuccess && (prev.Phase != typeahead.PhaseSuccess || prev.Token != s.Token) {
		m.cursor = 0
		if s.HasLatency {
			m.latencies.AddLatency(s.LastLatency)
		}
	}
	if m.cursor >= len(s.Items) {
		m.cursor = max(len(s.Items)-1, 0)
	}
}

// highlighted returns the suggestion under the cursor, if any.
func (m *searchModel) highlighted() string {
	if m.state.Phase != typeahead.PhaseSuccess || m.cursor >= len(m.state.Items) {
		return ""
	}
	return m.state.Items[m.cursor]
}

// View implements tea.Model.
func (m *searchModel) View() string {
	if m.quitting {
		return ""
	}

	contentWidth := max(m.width-4, 40)

	var sections []string
	sections = append(sections, m.input.View())
	sections = append(sections, m.renderStatus())
	sections = append(sections, m.renderList())
	if m.latencies.Count() > 0 {
		sections = append(sections, m.styles.Label.Render("latency ")+
			m.styles.Latency.Render(m.latencies.Render(min(30, contentWidth-10))))
	}

	panel := m.styles.Panel.Width(contentWidth).Render(strings.Join(sections, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Header.Render(m.title),
		panel,
		m.styles.Hint.Render(helpLine),
	) + "\n"
}

func (m *searchModel) renderStatus() string {
	line := StatusLine(m.state)
	style := m.styles.PhaseStyle(m.state.Phase.String())
	if m.state.Phase == typeahead.PhaseLoading {
		return m.spinner.View() + " " + style.Render(line)
	}
	return style.Render(line)
}

func (m *searchModel) renderList() string {
	if hint := Hint(m.state); hint != "" {
		if m.state.Phase == typeahead.PhaseError {
			hint += " (ctrl+r)"
		}
		return m.styles.Hint.Render(hint)
	}

	rows := make([]string, 0, len(m.state.Items))
	for i, item := range m.state.Items {
		if i == m.cursor {
			rows = append(rows, m.styles.Selected.Render("› "+ItemLine(i, item)))
			continue
		}
		rows = append(rows, "  "+m.styles.Rank.Render(fmt.Sprintf("#%d", i+1))+" "+m.styles.Item.Render(item))
	}
	return strings.Join(rows, "\n")
}

var _ Frontend = (*TUI)(nil)
