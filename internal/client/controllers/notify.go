package controllers

import (
	"context"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Severity Severity
	Message  string
}

type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// ListSink receives records saved through the status form so the visible
// list can be updated without a refetch.
type ListSink interface {
	Prepend(rec models.SubmittedFormRecord)
	Replace(rec models.SubmittedFormRecord)
}

// DraftStore is the persistence the status form auto-saves into.
type DraftStore interface {
	Save(ctx context.Context, form models.StatusForm) error
	Load(ctx context.Context, day string) (*models.StatusForm, error)
	Clear(ctx context.Context) error
}
