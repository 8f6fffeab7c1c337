package models

import (
	"errors"
	"strings"
)

// ErrInvalidSession is returned for an authenticated session without a user.
var ErrInvalidSession = errors.New("invalid session: authenticated without user")

// DriverUser is the identity a driver logged in with.
type DriverUser struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	AccessCode  string `json:"accessCode"`
}

// DriverSession is the persisted "who is logged in" state.
// User is non-nil whenever IsAuthenticated is true.
type DriverSession struct {
	IsAuthenticated bool        `json:"isAuthenticated"`
	User            *DriverUser `json:"user"`
}

// Anonymous is the session every process starts with.
func Anonymous() DriverSession {
	return DriverSession{}
}

// Authenticated builds a logged-in session for u.
func Authenticated(u DriverUser) DriverSession {
	return DriverSession{IsAuthenticated: true, User: &u}
}

func (s DriverSession) Validate() error {
	if s.IsAuthenticated && s.User == nil {
		return ErrInvalidSession
	}
	return nil
}

// DisplayName returns the driver's first name, or "" when logged out.
func (s DriverSession) DisplayName() string {
	if !s.IsAuthenticated || s.User == nil {
		return ""
	}
	return s.User.FirstName
}

// Credentials is the login form as sent to the backend.
type Credentials struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	AccessCode  string `json:"access_code"`
}

// Normalize trims surrounding whitespace from every field.
func (c Credentials) Normalize() Credentials {
	return Credentials{
		FirstName:   strings.TrimSpace(c.FirstName),
		LastName:    strings.TrimSpace(c.LastName),
		DateOfBirth: strings.TrimSpace(c.DateOfBirth),
		AccessCode:  strings.TrimSpace(c.AccessCode),
	}
}

// User converts the credentials into the identity kept in the session.
func (c Credentials) User() DriverUser {
	return DriverUser{
		FirstName:   c.FirstName,
		LastName:    c.LastName,
		DateOfBirth: c.DateOfBirth,
		AccessCode:  c.AccessCode,
	}
}
