package portal

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/config"
	"github.com/dmitrijs2005/driverportal/internal/client/drafts"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/client/storage"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

type App struct {
	config *config.Config
	logger logging.Logger
	store  *storage.Store
	server *Server
}

// NewApp opens the local store and builds the portal server.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	st, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	client, err := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	srv, err := NewServer(Options{
		Auth:          services.NewAuthService(client, st.Metadata, metadata.SQLiteAtomic(st.DB), log),
		Shifts:        services.NewShiftService(client, log),
		Drafts:        drafts.NewStore(st.Metadata, log),
		Clock:         timex.SystemClock{},
		Log:           log,
		DueTime:       c.DueTime,
		SessionSecret: c.SessionSecret,
		Language:      c.Language,
	})
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	return &App{config: c, logger: log, store: st, server: srv}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// Run serves the portal until a signal arrives or a component fails.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	defer func() {
		if err := app.store.Close(); err != nil {
			app.logger.Warn(context.Background(), "failed to close store", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(ctx, cancelFunc)

	if err := app.server.Restore(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx, app.config.ListenAddr)
	})
	g.Go(func() error {
		return app.server.Remind(gctx)
	})
	return g.Wait()
}
