// Package console is the router's interactive terminal. Commands typed at
// the prompt go through the in-process router, replies render in a
// scrollback viewport.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lokit-s/A2A-protocol/internal/domain"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("99")).Bold(true)
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	agentStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// Deps are the dependencies injected into the console model.
type Deps struct {
	// Route dispatches a command through the router.
	Route func(ctx context.Context, command string) domain.RouteResult
	// Health returns the latest agent health snapshot.
	Health func() []domain.AgentHealth
	Logger *slog.Logger
}

// routeDoneMsg carries a finished routing call back into Update.
type routeDoneMsg struct {
	gen    uint64
	result domain.RouteResult
}

// Model is the Bubble Tea model for the router console.
type Model struct {
	deps Deps

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	lines    []string
	waiting  bool
	quitting bool
	width    int
	height   int

	// gen increments per request; stale routeDoneMsgs are dropped.
	gen uint64
}

// New creates the console model.
func New(deps Deps) Model {
	ti := textinput.New()
	ti.Placeholder = `Try "Add iPhone for $999" or /help`
	ti.Prompt = promptStyle.Render("router> ")
	ti.CharLimit = 500
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = promptStyle

	m := Model{
		deps:  deps,
		input: ti,
		view:  viewport.New(80, 20),
		spin:  sp,
	}
	m.push(helpStyle.Render("Multi-agent router console. Type a command, or /help for options."))
	return m
}

// Init starts the spinner tick.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spin.Tick)
}

// Update handles key presses, window sizing, and finished route calls.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = msg.Height - 3
		m.input.Width = msg.Width - 10
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.waiting {
				break
			}
			text := strings.TrimSpace(m.input.Value())
			m.input.Reset()
			if text == "" {
				break
			}
			return m.submit(text)
		}

	case routeDoneMsg:
		if msg.gen != m.gen {
			break
		}
		m.waiting = false
		m.push(renderResult(msg.result))
		m.refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.view, cmd = m.view.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	switch text {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/help":
		m.push(helpStyle.Render(strings.Join([]string{
			"Commands:",
			"  /status  agent health snapshot",
			"  /help    this help",
			"  /quit    exit the console",
			"Anything else is routed to the matching agent.",
		}, "\n")))
		m.refresh()
		return m, nil
	case "/status":
		m.push(renderHealth(m.deps.Health()))
		m.refresh()
		return m, nil
	}

	m.push(userStyle.Render("you> ") + text)
	m.refresh()
	m.waiting = true
	m.gen++

	gen := m.gen
	route := m.deps.Route
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
		defer cancel()
		return routeDoneMsg{gen: gen, result: route(ctx, text)}
	}
}

func (m *Model) push(line string) {
	m.lines = append(m.lines, line)
}

func (m *Model) refresh() {
	m.view.SetContent(strings.Join(m.lines, "\n"))
	m.view.GotoBottom()
}

// View renders scrollback, then the input line or spinner.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	bottom := m.input.View()
	if m.waiting {
		bottom = m.spin.View() + " routing..."
	}
	return m.view.View() + "\n\n" + bottom
}

func renderResult(res domain.RouteResult) string {
	if !res.OK() {
		return errStyle.Render("✗ " + res.Message)
	}

	var b strings.Builder
	b.WriteString(okStyle.Render("✓ routed to " + res.RoutedTo))

	env, err := domain.DecodeAgentReply(res.Response)
	if err != nil {
		b.WriteString("\n" + agentStyle.Render(string(res.Response)))
		return b.String()
	}

	if env.OK() {
		b.WriteString("\n" + agentStyle.Render(env.Message))
	} else {
		b.WriteString("\n" + errStyle.Render(env.Message))
	}
	if detail := renderPayload(env); detail != "" {
		b.WriteString("\n" + agentStyle.Render(detail))
	}
	return b.String()
}

// renderPayload pretty-prints whichever entity payload the envelope holds.
func renderPayload(env *domain.Envelope) string {
	var v any
	switch {
	case env.Customer != nil:
		v = env.Customer
	case len(env.Customers) > 0:
		v = env.Customers
	case env.Product != nil:
		v = env.Product
	case len(env.Products) > 0:
		v = env.Products
	case env.Sale != nil:
		v = env.Sale
	case len(env.Sales) > 0:
		v = env.Sales
	default:
		return ""
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return ""
	}
	return string(out)
}

func renderHealth(statuses []domain.AgentHealth) string {
	if len(statuses) == 0 {
		return helpStyle.Render("no health data yet")
	}

	var b strings.Builder
	b.WriteString(helpStyle.Render("Agent status:"))
	for _, h := range statuses {
		mark := okStyle.Render("●")
		if !h.Online {
			mark = errStyle.Render("●")
		}
		b.WriteString(fmt.Sprintf("\n  %s %-14s %s (checked %s)",
			mark, h.Name, h.URL, h.CheckedAt.Format("15:04:05")))
	}
	return b.String()
}

// Run starts the console and blocks until the user quits.
func Run(ctx context.Context, deps Deps) error {
	p := tea.NewProgram(New(deps), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
