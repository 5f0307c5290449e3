package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testModel() model {
	m := newModel(nil, "ws://localhost:4000/socket")
	m.now = func() time.Time { return time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC) }
	return m
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		f    frame
		want string
	}{
		{
			name: "task created",
			f:    frame{Event: "task_created", Data: json.RawMessage(`{"id":"abc","title":"Write docs"}`)},
			want: `"Write docs" (abc)`,
		},
		{
			name: "task deleted",
			f:    frame{Event: "task_deleted", Data: json.RawMessage(`{"id":"abc"}`)},
			want: "abc",
		},
		{
			name: "tasks cleared",
			f:    frame{Event: "tasks_cleared", Data: json.RawMessage(`{"deleted":3}`)},
			want: "3 tasks removed",
		},
		{
			name: "report",
			f:    frame{Event: "report", Data: json.RawMessage(`{"description":"Report analysis","total":4}`)},
			want: "Report analysis: 4 tasks",
		},
		{
			name: "unknown event falls back to raw data",
			f:    frame{Event: "something", Data: json.RawMessage(`{"x":1}`)},
			want: `{"x":1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.f))
		})
	}
}

func TestModelRecordsFrames(t *testing.T) {
	var m tea.Model = testModel()

	m, cmd := m.Update(frameMsg{Event: "report", Data: json.RawMessage(`{"description":"Report analysis","total":2}`)})
	assert.Nil(t, cmd)

	view := m.View()
	assert.Contains(t, view, "15:04:05")
	assert.Contains(t, view, "Report analysis: 2 tasks")
	assert.NotContains(t, view, "Waiting for events")
}

func TestModelKeepsRecentFrames(t *testing.T) {
	var m tea.Model = testModel()
	for i := 0; i < maxEntries+5; i++ {
		m, _ = m.Update(frameMsg{Event: "task_deleted", Data: json.RawMessage(fmt.Sprintf(`{"id":"task-%d"}`, i))})
	}

	entries := m.(model).entries
	require.Len(t, entries, maxEntries)
	assert.Equal(t, "task-5", entries[0].text)
	assert.Equal(t, fmt.Sprintf("task-%d", maxEntries+4), entries[maxEntries-1].text)
}

func TestModelClearAndQuit(t *testing.T) {
	var m tea.Model = testModel()
	m, _ = m.Update(frameMsg{Event: "task_deleted", Data: json.RawMessage(`{"id":"abc"}`)})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("c")})
	assert.Empty(t, m.(model).entries)
	assert.Contains(t, m.View(), "Waiting for events")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.True(t, m.(model).quitting)
	assert.Empty(t, m.View())
}

func TestModelStopsOnConnectionError(t *testing.T) {
	var m tea.Model = testModel()

	m, cmd := m.Update(errMsg{errors.New("connection closed: EOF")})
	require.NotNil(t, cmd)
	assert.Contains(t, m.View(), "connection closed: EOF")
}
