package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Asker is the TUI-facing subset of the chatbot.
type Asker interface {
	HandleQuery(ctx context.Context, question string, sessionID string) model.QueryResult
	ClearSession(ctx context.Context, sessionID string) error
}

// answerMsg carries a finished query back into the update loop.
type answerMsg struct {
	result model.QueryResult
}

type clearedMsg struct {
	err error
}

type entry struct {
	question string
	result   model.QueryResult
}

// Model is the Bubble Tea model of the chat.
type Model struct {
	service   Asker
	sessionID string
	timeout   time.Duration
	input     textinput.Model
	viewport  viewport.Model
	history   []entry
	pending   string
	status    string
	ready     bool
}

// New creates a chat bound to sessionID. The timeout bounds each question.
func New(service Asker, sessionID string, timeout time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about fees, EMI, batches, curriculum..."
	ti.Focus()
	ti.CharLimit = 500
	vp := viewport.New(0, 0)
	return Model{
		service:   service,
		sessionID: sessionID,
		timeout:   timeout,
		input:     ti,
		viewport:  vp,
		status:    "Enter to ask, Ctrl+L to clear the conversation, Esc to quit.",
	}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key, window and answer events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptStyle.GetFrameSize()
		_, qh := inputStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header + session, status, input box
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil
	case answerMsg:
		m.history = append(m.history, entry{question: m.pending, result: msg.result})
		m.pending = ""
		if msg.result.SessionID != "" {
			m.sessionID = msg.result.SessionID
		}
		m.status = "Answered."
		if msg.result.UsedFallback {
			m.status = "Answered from course data."
		}
		m.refresh()
		return m, nil
	case clearedMsg:
		if msg.err != nil {
			m.status = "Error: " + msg.err.Error()
			return m, nil
		}
		m.history = nil
		m.status = "Conversation cleared."
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyCtrlL:
			if m.pending == "" {
				return m, m.clear()
			}
			return m, nil
		case tea.KeyEnter:
			q := strings.TrimSpace(m.input.Value())
			if q == "" || m.pending != "" {
				return m, nil
			}
			m.pending = q
			m.input.Reset()
			m.status = "Thinking..."
			m.refresh()
			return m, m.ask(q)
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the transcript, the input box and the status line.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Nextleap Course FAQ")
	session := mutedStyle.Render("session " + m.sessionID)
	transcript := transcriptStyle.Render(m.viewport.View())
	input := inputStyle.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + session + "\n" + transcript + "\n" + input + "\n" + status
}

func (m Model) ask(question string) tea.Cmd {
	service, sessionID, timeout := m.service, m.sessionID, m.timeout
	return func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return answerMsg{result: service.HandleQuery(ctx, question, sessionID)}
	}
}

func (m Model) clear() tea.Cmd {
	service, sessionID := m.service, m.sessionID
	return func() tea.Msg {
		return clearedMsg{err: service.ClearSession(context.Background(), sessionID)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m Model) renderTranscript() string {
	if len(m.history) == 0 && m.pending == "" {
		return mutedStyle.Render("No questions yet.")
	}
	width := max(20, m.viewport.Width-2)
	var b strings.Builder
	for _, e := range m.history {
		b.WriteString(questionStyle.Render("You: " + e.question))
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Render(e.result.Answer))
		b.WriteString("\n")
		if e.result.HasSource() {
			b.WriteString(sourceStyle.Render(fmt.Sprintf("Source: %s", e.result.SourceURL)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	if m.pending != "" {
		b.WriteString(questionStyle.Render("You: " + m.pending))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("..."))
	}
	return strings.TrimRight(b.String(), "\n")
}

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	questionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	sourceStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	transcriptStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
