// Package controllers holds the presentation-independent state machines of
// the driver client: the login form, the daily status form dialog, the
// paginated list of submitted forms and the dashboard to-do item.
//
// Controllers are safe for concurrent use. The terminal client and the web
// UI drive the same controllers and only differ in how they render state.
package controllers
