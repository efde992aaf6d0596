// Package tui is the terminal front end over a controller.Controller.
package tui

import (
	"context"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"taxdesk/internal/controller"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#1B2B85")).
			Padding(0, 1)
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#1B2B85")).Bold(true).MarginTop(1)
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DC3545")).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#DC3545")).
			Padding(0, 1)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6A1B9A"))
)

var writeClipboard = clipboard.WriteAll

type settledMsg struct{}

type keyMap struct {
	Submit  key.Binding
	Clear   key.Binding
	Example key.Binding
	Copy    key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Submit:  key.NewBinding(key.WithKeys("enter", "ctrl+s")),
	Clear:   key.NewBinding(key.WithKeys("esc")),
	Example: key.NewBinding(key.WithKeys("ctrl+p")),
	Copy:    key.NewBinding(key.WithKeys("ctrl+y")),
	Quit:    key.NewBinding(key.WithKeys("ctrl+c")),
}

type Model struct {
	ctx       context.Context
	ctrl      *controller.Controller
	catalogue []string
	renderer  *glamour.TermRenderer

	input    textarea.Model
	spinner  spinner.Model
	inflight int
	next     int
	notice   string
	width    int
}

// NewModel builds the interface. renderer may be nil, in which case answers
// are shown as plain text.
func NewModel(ctx context.Context, ctrl *controller.Controller, catalogue []string, renderer *glamour.TermRenderer) Model {
	ta := textarea.New()
	ta.Placeholder = "Enter your tax-related question here..."
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetWidth(80)
	ta.SetHeight(5)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:       ctx,
		ctrl:      ctrl,
		catalogue: catalogue,
		renderer:  renderer,
		input:     ta,
		spinner:   sp,
		width:     80,
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.SetWidth(max(20, msg.Width-4))
		return m, nil

	case settledMsg:
		if m.inflight > 0 {
			m.inflight--
		}
		return m, nil

	case spinner.TickMsg:
		if m.inflight == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		m.notice = ""
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Submit):
			return m.submit()
		case key.Matches(msg, keys.Clear):
			m.ctrl.Clear()
			m.input.Reset()
			return m, nil
		case key.Matches(msg, keys.Example):
			if len(m.catalogue) > 0 {
				m.input.SetValue(m.catalogue[m.next%len(m.catalogue)])
				m.next++
				m.ctrl.SetPrompt(m.input.Value())
			}
			return m, nil
		case key.Matches(msg, keys.Copy):
			if resp := m.ctrl.State().Response; resp != "" {
				if err := writeClipboard(resp); err != nil {
					m.notice = "copy failed: " + err.Error()
				} else {
					m.notice = "response copied"
				}
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetPrompt(m.input.Value())
	return m, cmd
}

// submit mirrors the disabled Send button: nothing happens while a request
// is in flight.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()
	if m.ctrl.State().Loading || strings.TrimSpace(text) == "" {
		return m, nil
	}
	m.inflight++
	ctx, ctrl := m.ctx, m.ctrl
	send := func() tea.Msg {
		ctrl.Submit(ctx, text)
		return settledMsg{}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

func (m Model) View() string {
	st := m.ctrl.State()
	var b strings.Builder

	b.WriteString(headerStyle.Render("Deloitte Auditor Enterprise Chat"))
	b.WriteString("\n")
	b.WriteString(titleStyle.Render("Tax Prompt"))
	b.WriteString("\n")
	if st.Error != "" {
		b.WriteString(errorStyle.Render(st.Error))
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if st.Loading || m.inflight > 0 {
		b.WriteString(m.spinner.View() + " Processing...")
	} else {
		b.WriteString(helpStyle.Render("enter send · alt+enter newline · esc cancel · ctrl+p example · ctrl+y copy · ctrl+c quit"))
	}
	if m.notice != "" {
		b.WriteString("  " + noticeStyle.Render(m.notice))
	}
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Response"))
	b.WriteString("\n")
	b.WriteString(m.renderResponse(st.Response))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderResponse(text string) string {
	if text == "" || m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// Run starts the interface and blocks until the user quits.
func Run(ctx context.Context, m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
