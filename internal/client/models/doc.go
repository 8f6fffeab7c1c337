// Package models defines the client-side data models of the driver portal:
// the authenticated driver session, the daily status form, submitted shift
// records and the paginated list envelope returned by the backend.
package models
