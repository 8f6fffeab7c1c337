package controllers

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/services"
	"github.com/dmitrijs2005/driverportal/internal/client/validation"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

const (
	MsgIncorrectCode = "Incorrect code, try again"
	MsgAuthFailed    = "Authentication failed"
	MsgNetworkError  = "Network error. Please try again."
)

// LoginResult is what the login screen renders after a submit.
type LoginResult struct {
	Session     models.DriverSession
	FieldErrors validation.FieldErrors
	// Error is a form-wide message, empty when there is none.
	Error string
}

func (r LoginResult) OK() bool {
	return r.Session.IsAuthenticated
}

type LoginController struct {
	auth services.AuthService
	log  logging.Logger

	mu       sync.Mutex
	inFlight bool
}

func NewLoginController(auth services.AuthService, log logging.Logger) *LoginController {
	return &LoginController{auth: auth, log: log.With("module", "login")}
}

// Submit validates creds and, when they are well formed, logs in. Only one
// login may be in flight; a concurrent Submit returns ErrBusy. Every other
// outcome, including backend failures, is reported through LoginResult.
func (c *LoginController) Submit(ctx context.Context, creds models.Credentials) (LoginResult, error) {
	creds = creds.Normalize()
	if errs := validation.ValidateCredentials(creds); !errs.Empty() {
		return LoginResult{FieldErrors: errs}, nil
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return LoginResult{}, ErrBusy
	}
	c.inFlight = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.inFlight = false
		c.mu.Unlock()
	}()

	ds, err := c.auth.Login(ctx, creds)
	if err == nil {
		return LoginResult{Session: ds}, nil
	}

	var apiErr *api.APIError
	switch {
	case errors.Is(err, api.ErrUnauthorized):
		return LoginResult{FieldErrors: validation.FieldErrors{validation.FieldAccessCode: MsgIncorrectCode}}, nil
	case errors.As(err, &apiErr):
		msg := apiErr.Message
		if msg == "" {
			msg = MsgAuthFailed
		}
		return LoginResult{Error: msg}, nil
	default:
		c.log.Warn(ctx, "login failed", "error", err)
		return LoginResult{Error: MsgNetworkError}, nil
	}
}

// InFlight reports whether a login request is pending.
func (c *LoginController) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}
