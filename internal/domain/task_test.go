package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTaskNextStatus(t *testing.T) {
	task := &Task{Status: TaskTodo}
	seen := []TaskStatus{}
	for i := 0; i < 3; i++ {
		task.Status = task.NextStatus()
		seen = append(seen, task.Status)
	}
	assert.Equal(t, []TaskStatus{TaskDoing, TaskDone, TaskTodo}, seen)
}

func TestTaskIsOverdue(t *testing.T) {
	now := day(2024, 3, 10)
	due := day(2024, 3, 9)

	assert.True(t, (&Task{Status: TaskTodo, DueDate: &due}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskDone, DueDate: &due}).IsOverdue(now))
	assert.False(t, (&Task{Status: TaskTodo}).IsOverdue(now))

	today := day(2024, 3, 10)
	assert.False(t, (&Task{Status: TaskDoing, DueDate: &today}).IsOverdue(now))
}

func TestTaskIsUpcoming(t *testing.T) {
	now := day(2024, 3, 10)
	due := func(d time.Time) *time.Time { return &d }

	assert.True(t, (&Task{Status: TaskTodo, DueDate: due(now)}).IsUpcoming(now))
	assert.True(t, (&Task{Status: TaskDoing, DueDate: due(day(2024, 3, 17))}).IsUpcoming(now))
	assert.False(t, (&Task{Status: TaskTodo, DueDate: due(day(2024, 3, 18))}).IsUpcoming(now))
	assert.False(t, (&Task{Status: TaskTodo, DueDate: due(day(2024, 3, 9))}).IsUpcoming(now), "overdue is not upcoming")
	assert.False(t, (&Task{Status: TaskDone, DueDate: due(now)}).IsUpcoming(now))
	assert.False(t, (&Task{Status: TaskTodo}).IsUpcoming(now))
}
