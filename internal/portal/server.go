package portal

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// Options are the collaborators of a Server.
type Options struct {
	Auth    services.AuthService
	Shifts  services.ShiftService
	Drafts  controllers.DraftStore
	Clock   timex.Clock
	Log     logging.Logger
	DueTime timex.TimeOfDay

	SessionSecret string
	Language      string
}

type Server struct {
	auth    services.AuthService
	shifts  services.ShiftService
	drafts  controllers.DraftStore
	login   *controllers.LoginController
	form    *controllers.StatusFormController
	clock   timex.Clock
	dueTime timex.TimeOfDay
	log     logging.Logger

	cookies *sessions.CookieStore
	pages   map[string]*template.Template

	mu      sync.Mutex
	session models.DriverSession
}

func NewServer(o Options) (*Server, error) {
	if o.Clock == nil {
		o.Clock = timex.SystemClock{}
	}
	if o.Log == nil {
		o.Log = logging.Nop()
	}
	pages, err := parseTemplates(newPrinter(o.Language))
	if err != nil {
		return nil, err
	}
	s := &Server{
		auth:    o.Auth,
		shifts:  o.Shifts,
		drafts:  o.Drafts,
		login:   controllers.NewLoginController(o.Auth, o.Log),
		clock:   o.Clock,
		dueTime: o.DueTime,
		log:     o.Log.With("module", "portal"),
		cookies: newCookieStore(o.SessionSecret),
		pages:   pages,
	}
	s.form = controllers.NewStatusFormController(s.dialogOptions())
	return s, nil
}

// Restore loads the stored session so a restarted portal stays logged in.
func (s *Server) Restore(ctx context.Context) error {
	ds, err := s.auth.Current(ctx)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	s.setSession(ds)
	if ds.IsAuthenticated {
		s.log.Info(ctx, "session restored", "driver", ds.DisplayName())
	}
	return nil
}

func (s *Server) setSession(ds models.DriverSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = ds
}

func (s *Server) currentSession() models.DriverSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

// Routes builds the HTTP handler.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer, s.accessLog)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	r.Get("/login", s.loginPage)
	r.Post("/login", s.loginSubmit)

	r.Group(func(r chi.Router) {
		r.Use(s.requireLogin)

		r.Post("/logout", s.logout)
		r.Get("/dashboard", s.dashboard)

		r.Route("/forms", func(r chi.Router) {
			r.Get("/new", s.newForm)
			r.Post("/new", s.newFormSubmit)
			r.Post("/new/areas", s.newFormAddArea)
			r.Post("/new/areas/delete", s.newFormRemoveArea)

			r.Get("/{id}", s.showForm)
			r.Get("/{id}/edit", s.editForm)
			r.Post("/{id}/edit", s.editFormSubmit)
			r.Post("/{id}/edit/areas", s.editFormAddArea)
			r.Post("/{id}/edit/areas/delete", s.editFormRemoveArea)
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.requireLoginAPI)
		r.Get("/forms", s.apiForms)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, "The page you are looking for does not exist.")
	})
	return r
}

func (s *Server) requireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.currentSession().IsAuthenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	listen, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		s.log.Info(ctx, "Stopping portal...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info(ctx, "Starting portal", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
