package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/controllers"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

// getSimpleText and getSecret are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// Login prompts for the driver's name, date of birth and access code and
// authenticates. Field errors and backend messages are printed; the
// returned error is only non-nil for input failures.
func (a *App) Login(ctx context.Context) error {
	var creds models.Credentials
	var err error

	if creds.FirstName, err = getSimpleText(a.reader, "First name", a.out); err != nil {
		return err
	}
	if creds.LastName, err = getSimpleText(a.reader, "Last name", a.out); err != nil {
		return err
	}
	if creds.DateOfBirth, err = getSimpleText(a.reader, "Date of birth (YYYY-MM-DD)", a.out); err != nil {
		return err
	}
	if creds.AccessCode, err = getSecret(a.reader, "Access code", a.out); err != nil {
		return err
	}

	res, err := a.login.Submit(ctx, creds)
	if err != nil {
		a.printf("%v\n", err)
		return err
	}
	if !res.OK() {
		for _, msg := range res.FieldErrors.Messages() {
			a.printf("  %s\n", msg)
		}
		if res.Error != "" {
			a.printf("%s\n", res.Error)
		}
		return nil
	}

	a.setSession(res.Session)
	a.printf("Welcome, %s!\n", res.Session.DisplayName())
	a.refresh(ctx)
	return nil
}

// Logout forgets the session and the unfinished draft.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		a.printf("Logout failed: %v\n", err)
		return err
	}
	a.setSession(models.Anonymous())
	a.printf("Logged out.\n")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ds := a.currentSession()
	if !ds.IsAuthenticated {
		a.printf("Not logged in.\n")
		return nil
	}
	a.printf("%s %s (born %s)\n", ds.User.FirstName, ds.User.LastName, ds.User.DateOfBirth)
	return nil
}

// handleUnauthorized drops the in-memory session when the backend no longer
// accepts it. The stored session and draft stay so a fresh login picks up
// where the driver left off. It reports whether err was a 401.
func (a *App) handleUnauthorized(err error) bool {
	if !errors.Is(err, api.ErrUnauthorized) {
		return false
	}
	a.setSession(models.Anonymous())
	a.printf("%s\n", controllers.MsgNotLoggedIn)
	return true
}
