package portal

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
)

type loginData struct {
	Creds  models.Credentials
	Errors map[string]string
	Error  string
}

func (s *Server) loginPage(w http.ResponseWriter, r *http.Request) {
	if s.currentSession().IsAuthenticated {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Log in", loginData{Errors: map[string]string{}})
}

func (s *Server) loginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, "Could not read the form.")
		return
	}
	creds := models.Credentials{
		FirstName:   r.PostFormValue("first_name"),
		LastName:    r.PostFormValue("last_name"),
		DateOfBirth: r.PostFormValue("date_of_birth"),
		AccessCode:  r.PostFormValue("access_code"),
	}

	res, err := s.login.Submit(r.Context(), creds)
	if err != nil {
		// another login is already in flight
		s.render(w, r, http.StatusConflict, "login.html", "Log in", loginData{
			Creds:  creds.Normalize(),
			Errors: map[string]string{},
			Error:  err.Error(),
		})
		return
	}
	if !res.OK() {
		creds = creds.Normalize()
		creds.AccessCode = ""
		s.render(w, r, http.StatusUnprocessableEntity, "login.html", "Log in", loginData{
			Creds:  creds,
			Errors: fieldMap(res.FieldErrors),
			Error:  res.Error,
		})
		return
	}

	s.setSession(res.Session)
	s.addFlash(w, r, flashSuccess, "Welcome, "+res.Session.DisplayName()+"!")
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context()); err != nil {
		s.log.Error(r.Context(), "logout failed", "error", err)
		s.addFlash(w, r, flashError, "Logout failed. Please try again.")
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	s.setSession(models.Anonymous())
	s.addFlash(w, r, flashSuccess, "Logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleUnauthorized drops the in-memory session after a backend 401 and
// sends the browser to the login page. The stored session and draft are
// kept. It reports whether err was a 401.
func (s *Server) handleUnauthorized(w http.ResponseWriter, r *http.Request, err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	s.setSession(models.Anonymous())
	s.addFlash(w, r, flashError, controllers.MsgNotLoggedIn)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
	return true
}

func fieldMap(fe validation.FieldErrors) map[string]string {
	m := make(map[string]string, len(fe))
	for f, msg := range fe {
		m[string(f)] = msg
	}
	return m
}
