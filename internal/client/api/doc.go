// Package api talks to the fleet backend over its JSON REST interface.
//
// # Overview
//
// Client is the transport-agnostic contract used by services and tests;
// HTTPClient is the net/http implementation. The backend authenticates the
// driver with a session cookie, so HTTPClient keeps a cookie jar for the
// lifetime of the process.
//
// # Error Handling
//
// Failures are reduced to a small taxonomy that callers match with errors.Is
// and errors.As:
//
//   - ErrUnauthorized: 401, the driver has to log in again. A 403 is an
//     APIError carrying the backend message.
//   - ErrNotFound: 404.
//   - ErrUnavailable: the backend could not be reached, timed out, or
//     answered 502/503/504.
//   - *APIError: any other non-2xx status, carrying the backend's message.
package api
