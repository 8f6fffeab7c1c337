package cli

import (
	"context"

	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
)

// Todo prints today's to-do item, refreshing the list first.
func (a *App) Todo(ctx context.Context) error {
	if err := a.list.Fetch(ctx); err != nil {
		if !a.handleUnauthorized(err) {
			a.printf("Could not load forms: %v\n", err)
		}
		return err
	}

	todo := controllers.BuildTodo(a.clock.Now(), a.dueTime, a.list.Snapshot().Results)
	switch {
	case todo.Filled:
		a.printf("[x] Daily status for %s submitted.\n", todo.Date)
	case todo.Late:
		a.printf("[ ] Daily status for %s is LATE (due %s). Type 'new' to fill it in.\n", todo.Date, a.dueTime)
	default:
		a.printf("[ ] Daily status for %s due by %s. Type 'new' to fill it in.\n", todo.Date, a.dueTime)
	}
	return nil
}
