package portal

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

type dashboardData struct {
	Todo       controllers.Todo
	DueTime    string
	Results    []models.SubmittedFormRecord
	Count      int
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// pageParam reads ?page=N; anything missing or below 1 means the first page.
func pageParam(r *http.Request) int {
	p, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || p < 1 {
		return 1
	}
	return p
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page := pageParam(r)

	resp, err := s.shifts.List(ctx, page)
	if err != nil {
		switch {
		case s.handleUnauthorized(w, r, err):
		case errors.Is(err, api.ErrNotFound) && page > 1:
			http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		default:
			s.log.Error(ctx, "failed to list forms", "page", page, "error", err)
			s.renderError(w, r, http.StatusBadGateway, "Could not load forms. Please try again.")
		}
		return
	}

	// today's record, if any, is on the first page
	first := resp.Results
	if page > 1 {
		if p1, err := s.shifts.List(ctx, 1); err == nil {
			first = p1.Results
		}
	}

	total := max(resp.TotalPages(), 1)
	s.render(w, r, http.StatusOK, "dashboard.html", "Dashboard", dashboardData{
		Todo:       controllers.BuildTodo(s.clock.Now(), s.dueTime, first),
		DueTime:    s.dueTime.String(),
		Results:    resp.Results,
		Count:      int(resp.Count),
		Page:       page,
		TotalPages: total,
		HasPrev:    page > 1,
		HasNext:    page < total,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	})
}

type errorBody struct {
	Message string `json:"message"`
}

func (s *Server) requireLoginAPI(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.currentSession().IsAuthenticated {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, errorBody{Message: controllers.MsgNotLoggedIn})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// apiForms proxies one page of the submitted forms as JSON.
func (s *Server) apiForms(w http.ResponseWriter, r *http.Request) {
	resp, err := s.shifts.List(r.Context(), pageParam(r))
	if err != nil {
		status := http.StatusInternalServerError
		msg := "internal error"
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			s.setSession(models.Anonymous())
			status, msg = http.StatusUnauthorized, controllers.MsgNotLoggedIn
		case errors.Is(err, api.ErrNotFound):
			status, msg = http.StatusNotFound, "page not found"
		case errors.Is(err, api.ErrUnavailable):
			status, msg = http.StatusBadGateway, "backend unavailable"
		default:
			s.log.Error(r.Context(), "failed to list forms", "error", err)
		}
		render.Status(r, status)
		render.JSON(w, r, errorBody{Message: msg})
		return
	}
	if resp.Results == nil {
		resp.Results = []models.SubmittedFormRecord{}
	}
	render.JSON(w, r, resp)
}
