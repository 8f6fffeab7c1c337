package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/config"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/drafts"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/client/storage"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// Deps are the collaborators of an App. NewApp builds them from Config;
// tests assemble them directly.
type Deps struct {
	Auth   services.AuthService
	Shifts services.ShiftService
	Drafts controllers.DraftStore
	Clock  timex.Clock
	Log    logging.Logger

	DueTime          timex.TimeOfDay
	AutoSaveInterval time.Duration
	DismissDelay     time.Duration

	In  io.Reader
	Out io.Writer
}

type App struct {
	auth    services.AuthService
	shifts  services.ShiftService
	login   *controllers.LoginController
	list    *controllers.FormListController
	form    *controllers.StatusFormController
	clock   timex.Clock
	dueTime timex.TimeOfDay
	log     logging.Logger

	mu      sync.Mutex
	session models.DriverSession

	reader *bufio.Reader
	out    io.Writer
	closer io.Closer
}

// NewApp opens the local store and connects the backend client.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	st, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	apiClient, err := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	a := New(Deps{
		Auth:             services.NewAuthService(apiClient, st.Metadata, metadata.SQLiteAtomic(st.DB), log),
		Shifts:           services.NewShiftService(apiClient, log),
		Drafts:           drafts.NewStore(st.Metadata, log),
		Clock:            timex.SystemClock{},
		Log:              log,
		DueTime:          c.DueTime,
		AutoSaveInterval: c.AutoSaveInterval,
		DismissDelay:     c.DismissDelay,
		In:               os.Stdin,
		Out:              os.Stdout,
	})
	a.closer = st
	return a, nil
}

// New assembles an App from ready-made collaborators.
func New(d Deps) *App {
	if d.Clock == nil {
		d.Clock = timex.SystemClock{}
	}
	if d.Log == nil {
		d.Log = logging.Nop()
	}
	a := &App{
		auth:    d.Auth,
		shifts:  d.Shifts,
		clock:   d.Clock,
		dueTime: d.DueTime,
		log:     d.Log.With("module", "cli"),
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
	}
	a.login = controllers.NewLoginController(d.Auth, d.Log)
	a.list = controllers.NewFormListController(d.Shifts, d.Log)
	a.form = controllers.NewStatusFormController(controllers.StatusFormOptions{
		Shifts:           d.Shifts,
		Drafts:           d.Drafts,
		List:             a.list,
		Notifier:         controllers.NotifierFunc(a.notify),
		Clock:            d.Clock,
		Log:              d.Log,
		AutoSaveInterval: d.AutoSaveInterval,
		DismissDelay:     d.DismissDelay,
	})
	return a
}

// Run restores the saved session and runs the REPL until the user exits.
func (a *App) Run(ctx context.Context) error {
	defer a.Close()

	ds, err := a.auth.Current(ctx)
	if err != nil {
		return err
	}
	a.setSession(ds)

	a.printf("Driver Portal (type 'help' for commands)\n")
	if a.isLoggedIn() {
		a.printf("Welcome back, %s.\n", ds.DisplayName())
		a.refresh(ctx)
	}

	runREPL(ctx, a, a.status, a.reader)
	return nil
}

// Close stops background work and releases the local store.
func (a *App) Close() {
	a.form.Close()
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.log.Warn(context.Background(), "failed to close store", "error", err)
		}
		a.closer = nil
	}
}

// Interrupt keeps an open new form as a draft and releases the store. It is
// meant for signal handlers, while Run may still be blocked on input.
func (a *App) Interrupt() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	a.saveDraftOnExit(ctx)
	a.Close()
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session.IsAuthenticated
}

func (a *App) setSession(ds models.DriverSession) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.session = ds
}

func (a *App) currentSession() models.DriverSession {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// status renders the prompt decoration: driver name and the overdue marker.
func (a *App) status() string {
	ds := a.currentSession()
	if !ds.IsAuthenticated {
		return ""
	}
	s := " (" + ds.DisplayName()
	snap := a.list.Snapshot()
	if snap.Loaded {
		todo := controllers.BuildTodo(a.clock.Now(), a.dueTime, snap.Results)
		if todo.Late {
			s += " LATE"
		}
	}
	return s + ")"
}

func (a *App) notify(n controllers.Notification) {
	prefix := "OK"
	if n.Severity == controllers.SeverityError {
		prefix = "ERROR"
	}
	a.printf("[%s] %s\n", prefix, n.Message)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
