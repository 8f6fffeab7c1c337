// Package portal serves the driver portal as a local web application.
//
// The portal is a single-driver UI running next to the backend client: it
// restores the stored session on start, keeps the unfinished form of the day
// as a draft and talks to the backend through the same services as the
// terminal client. Browser cookies only carry flash messages.
package portal
