package portal

import (
	"context"
	"time"

	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
)

// Overdue reports whether today's form is missing past the due time.
// Logged-out portals are never overdue.
func (s *Server) Overdue(ctx context.Context) (bool, error) {
	if !s.currentSession().IsAuthenticated {
		return false, nil
	}
	resp, err := s.shifts.List(ctx, 1)
	if err != nil {
		return false, err
	}
	return controllers.BuildTodo(s.clock.Now(), s.dueTime, resp.Results).Late, nil
}

// Remind logs a warning each day the form is still missing at the due time.
// It returns when ctx is cancelled.
func (s *Server) Remind(ctx context.Context) error {
	for {
		now := s.clock.Now()
		next := s.dueTime.On(now)
		if !now.Before(next) {
			next = next.AddDate(0, 0, 1)
		}

		t := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}

		late, err := s.Overdue(ctx)
		switch {
		case err != nil:
			s.log.Warn(ctx, "failed to check daily status", "error", err)
		case late:
			s.log.Warn(ctx, "daily status is overdue", "due", s.dueTime.String())
		}
	}
}
