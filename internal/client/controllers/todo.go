package controllers

import (
	"time"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// DefaultDueTime is when today's form becomes overdue.
var DefaultDueTime = timex.TimeOfDay{Hour: 9}

// Todo is the dashboard's single to-do item: today's status form.
type Todo struct {
	Date   string
	Filled bool
	Late   bool
	Due    time.Time
}

// TodayFilled reports whether any record is dated today.
func TodayFilled(results []models.SubmittedFormRecord, today string) bool {
	for _, r := range results {
		d, err := timex.NormalizeDay(r.Date)
		if err == nil && d == today {
			return true
		}
	}
	return false
}

// BuildTodo derives the to-do item at now from the visible list.
func BuildTodo(now time.Time, due timex.TimeOfDay, results []models.SubmittedFormRecord) Todo {
	today := timex.Day(now)
	filled := TodayFilled(results, today)
	dueAt := due.On(now)
	return Todo{
		Date:   today,
		Filled: filled,
		Late:   !filled && !now.Before(dueAt),
		Due:    dueAt,
	}
}
