package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/gorilla/websocket"
)

// maxEntries bounds the number of frames kept on screen.
const maxEntries = 20

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	eventStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")).
			Bold(true).
			Width(16)

	reportStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true).
			Width(16)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)
)

type entry struct {
	at    time.Time
	event string
	text  string
}

type model struct {
	conn     *websocket.Conn
	url      string
	entries  []entry
	err      error
	quitting bool
	now      func() time.Time
}

type frameMsg frame
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func newModel(conn *websocket.Conn, url string) model {
	return model{conn: conn, url: url, now: time.Now}
}

func (m model) Init() tea.Cmd {
	return listen(m.conn)
}

// listen waits for the next frame on conn.
func listen(conn *websocket.Conn) tea.Cmd {
	return func() tea.Msg {
		f, err := readFrame(conn)
		if err != nil {
			return errMsg{fmt.Errorf("connection closed: %w", err)}
		}
		return frameMsg(f)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			m.quitting = true
			return m, tea.Quit
		case "c":
			m.entries = nil
		}
		return m, nil

	case frameMsg:
		m.entries = append(m.entries, entry{
			at:    m.now(),
			event: msg.Event,
			text:  describe(frame(msg)),
		})
		if len(m.entries) > maxEntries {
			m.entries = m.entries[len(m.entries)-maxEntries:]
		}
		if m.conn == nil {
			return m, nil
		}
		return m, listen(m.conn)

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("taskflow watch - " + m.url))
	b.WriteString("\n")

	if len(m.entries) == 0 {
		b.WriteString(timeStyle.Render("Waiting for events..."))
		b.WriteString("\n")
	}
	for _, e := range m.entries {
		style := eventStyle
		if e.event == "report" {
			style = reportStyle
		}
		b.WriteString(timeStyle.Render(e.at.Format("15:04:05")) + " " + style.Render(e.event) + " " + e.text)
		b.WriteString("\n")
	}

	if m.err != nil {
		b.WriteString("\n" + errorStyle.Render(m.err.Error()) + "\n")
	}

	b.WriteString(helpStyle.Render("c: clear • q: quit"))
	b.WriteString("\n")
	return b.String()
}

// describe renders a one-line summary of a frame's data.
func describe(f frame) string {
	switch f.Event {
	case "task_created", "task_updated":
		var task struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		}
		if json.Unmarshal(f.Data, &task) == nil && task.Title != "" {
			return fmt.Sprintf("%q (%s)", task.Title, task.ID)
		}
	case "task_deleted":
		var deleted struct {
			ID string `json:"id"`
		}
		if json.Unmarshal(f.Data, &deleted) == nil && deleted.ID != "" {
			return deleted.ID
		}
	case "tasks_cleared":
		var cleared struct {
			Deleted int64 `json:"deleted"`
		}
		if json.Unmarshal(f.Data, &cleared) == nil {
			return fmt.Sprintf("%d tasks removed", cleared.Deleted)
		}
	case "report":
		var report struct {
			Description string `json:"description"`
			Total       int64  `json:"total"`
		}
		if json.Unmarshal(f.Data, &report) == nil && report.Description != "" {
			return fmt.Sprintf("%s: %d tasks", report.Description, report.Total)
		}
	}
	return string(f.Data)
}
