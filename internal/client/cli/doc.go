// Package cli provides the interactive terminal client for drivers.
//
// It wires configuration, the local store, the backend client, services and
// controllers, and runs a read-eval-print loop on top of them. Typical flow:
// log in, check today's to-do item, fill in the daily status form, browse
// previously submitted forms.
//
// Key features:
//   - Login / Logout, with the access code read without echo
//   - Today's form with auto-saved draft (new), editing of past forms (edit)
//   - Paginated list of submitted forms (list, page, next, prev, show)
//   - Overdue indicator in the prompt once the daily due time has passed
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
