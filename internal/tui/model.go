package tui

import (
	"fmt"
	"strings"

	"quizify/internal/session"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Model is the Bubble Tea model for answering a quiz.
type Model struct {
	session  *session.Session
	help     help.Model
	banner   string
	selected int
	feedback string
	// first submission per question index
	results map[int]bool
}

// New creates a quiz view over s. banner, when set, is shown above every
// question, e.g. to report that fewer questions were generated than asked.
func New(s *session.Session, banner string) Model {
	return Model{
		session: s,
		help:    help.New(),
		banner:  banner,
		results: make(map[int]bool),
	}
}

func (m Model) Init() tea.Cmd { return nil }

// Update handles key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
	case tea.KeyMsg:
		n := len(m.session.Current().Choices)
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.selected = (m.selected - 1 + n) % n
		case key.Matches(msg, keys.Down):
			m.selected = (m.selected + 1) % n
		case key.Matches(msg, keys.Submit):
			correct := m.session.Answer(m.selected)
			if _, done := m.results[m.session.Index()]; !done {
				m.results[m.session.Index()] = correct
			}
			if correct {
				m.feedback = "Correct!"
			} else {
				m.feedback = "Incorrect!"
			}
		case key.Matches(msg, keys.Next):
			m.session.Next()
			m.reset()
		case key.Matches(msg, keys.Prev):
			m.session.Previous()
			m.reset()
		}
	}
	return m, nil
}

func (m *Model) reset() {
	m.selected = 0
	m.feedback = ""
}

// Score returns how many questions were answered correctly on the first try
// and how many were answered at all.
func (m Model) Score() (correct, answered int) {
	for _, ok := range m.results {
		if ok {
			correct++
		}
	}
	return correct, len(m.results)
}

func (m Model) View() string {
	var b strings.Builder
	if m.banner != "" {
		b.WriteString(bannerStyle.Render(m.banner) + "\n\n")
	}

	q := m.session.Current()
	b.WriteString(headerStyle.Render(fmt.Sprintf("Question %d of %d", m.session.Index()+1, m.session.Len())) + "\n")
	b.WriteString(questionStyle.Render(q.Question) + "\n\n")

	for i, c := range q.Choices {
		line := fmt.Sprintf("%s. %s", session.Label(i), c.Value)
		if i == m.selected {
			b.WriteString(selectedStyle.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}

	switch m.feedback {
	case "Correct!":
		b.WriteString("\n" + correctStyle.Render(m.feedback) + "\n")
	case "Incorrect!":
		b.WriteString("\n" + incorrectStyle.Render(m.feedback) + "\n")
	}

	correct, answered := m.Score()
	b.WriteString("\n" + scoreStyle.Render(fmt.Sprintf("Score: %d/%d", correct, answered)) + "\n")
	b.WriteString(m.help.View(keys))
	return b.String()
}

var (
	bannerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Border(lipgloss.RoundedBorder()).Padding(0, 1)
	headerStyle    = lipgloss.NewStyle().Bold(true)
	questionStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	selectedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	scoreStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)
