package portal

import (
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	cookieName = "driverportal"

	flashSuccess = "success"
	flashError   = "error"
)

// newCookieStore builds the flash cookie store. An empty secret gets a random
// per-process key, so flashes do not survive a restart.
func newCookieStore(secret string) *sessions.CookieStore {
	key := []byte(secret)
	if len(key) == 0 {
		key = securecookie.GenerateRandomKey(32)
	}
	st := sessions.NewCookieStore(key)
	st.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	return st
}

type flashes struct {
	Success []string
	Error   []string
}

func (s *Server) addFlash(w http.ResponseWriter, r *http.Request, kind, msg string) {
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		s.log.Debug(r.Context(), "discarding unreadable cookie", "error", err)
	}
	sess.AddFlash(msg, kind)
	if err := sess.Save(r, w); err != nil {
		s.log.Warn(r.Context(), "failed to save flash", "error", err)
	}
}

// popFlashes reads and clears pending flashes. It must run before anything
// is written to w.
func (s *Server) popFlashes(w http.ResponseWriter, r *http.Request) flashes {
	var f flashes
	sess, err := s.cookies.Get(r, cookieName)
	if err != nil {
		return f
	}
	for _, v := range sess.Flashes(flashSuccess) {
		if msg, ok := v.(string); ok {
			f.Success = append(f.Success, msg)
		}
	}
	for _, v := range sess.Flashes(flashError) {
		if msg, ok := v.(string); ok {
			f.Error = append(f.Error, msg)
		}
	}
	if len(f.Success)+len(f.Error) > 0 {
		if err := sess.Save(r, w); err != nil {
			s.log.Warn(r.Context(), "failed to clear flashes", "error", err)
		}
	}
	return f
}
