package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTask(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	task, err := NewTask(owner, "  write report  ")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, task.ID)
	assert.Equal(t, owner, task.UserID)
	assert.Equal(t, "write report", task.Title)
	assert.True(t, task.OwnedBy(owner))
	assert.False(t, task.OwnedBy(uuid.New()))
}

func TestNewTaskValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTask(uuid.Nil, "title")
	assert.ErrorIs(t, err, ErrEmptyTaskOwnerID)

	_, err = NewTask(uuid.New(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)

	_, err = NewTask(uuid.New(), strings.Repeat("t", MaxTaskTitleLength+1))
	assert.ErrorIs(t, err, ErrTaskTitleTooLong)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTaskRename(t *testing.T) {
	t.Parallel()

	task, err := NewTask(uuid.New(), "old")
	require.NoError(t, err)
	task.UpdatedAt = time.Now().Add(-time.Hour)
	before := task.UpdatedAt

	require.NoError(t, task.Rename(" new "))
	assert.Equal(t, "new", task.Title)
	assert.True(t, task.UpdatedAt.After(before))

	err = task.Rename("")
	assert.ErrorIs(t, err, ErrEmptyTaskTitle)
	assert.Equal(t, "new", task.Title, "failed rename must leave the title untouched")
}

func TestNewReport(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	report := NewReport(owner, 7)

	assert.Equal(t, owner, report.UserID)
	assert.Equal(t, "Report analysis", report.Description)
	assert.EqualValues(t, 7, report.Total)
	assert.WithinDuration(t, time.Now(), report.CreatedAt, time.Minute)
}
