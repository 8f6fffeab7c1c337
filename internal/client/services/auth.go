// Package services contains application services for the driver client.
// This file defines the authentication service: login against the backend,
// logout, and access to the persisted driver session.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/drafts"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/client/session"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

// AuthService defines authentication operations for the presentation layers.
//
// Contract:
//   - Login: authenticate against the backend and, on success, persist an
//     authenticated session for the given driver.
//   - Logout: forget the session and any unfinished draft in one step.
//   - Current: the persisted session, anonymous when nothing usable is stored.
//
// Credentials are not validated here; callers run validation first.
type AuthService interface {
	Login(ctx context.Context, creds models.Credentials) (models.DriverSession, error)
	Logout(ctx context.Context) error
	Current(ctx context.Context) (models.DriverSession, error)
}

type authService struct {
	client   api.Client
	sessions *session.Store
	atomic   metadata.Atomic
	log      logging.Logger
}

// NewAuthService binds the service to the backend client and the local store.
// atomic must operate on the same store as repo.
func NewAuthService(client api.Client, repo metadata.Repository, atomic metadata.Atomic, log logging.Logger) AuthService {
	return &authService{
		client:   client,
		sessions: session.NewStore(repo, log),
		atomic:   atomic,
		log:      log.With("module", "auth"),
	}
}

func (a *authService) Login(ctx context.Context, creds models.Credentials) (models.DriverSession, error) {
	creds = creds.Normalize()

	if err := a.client.Login(ctx, creds); err != nil {
		a.log.Info(ctx, "login rejected", "driver", creds.FirstName+" "+creds.LastName, "error", err)
		return models.Anonymous(), fmt.Errorf("login error: %w", err)
	}

	ds := models.Authenticated(creds.User())
	if err := a.sessions.Replace(ctx, ds); err != nil {
		return models.Anonymous(), fmt.Errorf("session saving error: %w", err)
	}

	a.log.Info(ctx, "driver logged in", "driver", creds.FirstName+" "+creds.LastName)
	return ds, nil
}

func (a *authService) Logout(ctx context.Context) error {
	err := a.atomic(ctx, func(ctx context.Context, repo metadata.Repository) error {
		if err := session.NewStore(repo, a.log).Clear(ctx); err != nil {
			return err
		}
		return drafts.NewStore(repo, a.log).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("logout error: %w", err)
	}
	a.log.Info(ctx, "driver logged out")
	return nil
}

func (a *authService) Current(ctx context.Context) (models.DriverSession, error) {
	return a.sessions.Get(ctx)
}
