package api

import (
	"context"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
)

// Client is the backend contract.
type Client interface {
	// Login authenticates the driver. On success the backend session cookie
	// is retained for subsequent calls.
	Login(ctx context.Context, creds models.Credentials) error

	// ListShifts returns one page (1-based) of the driver's submitted forms.
	ListShifts(ctx context.Context, page int) (*models.FormListResponse, error)

	GetShift(ctx context.Context, id string) (*models.SubmittedFormRecord, error)
	CreateShift(ctx context.Context, form models.StatusForm) (*models.SubmittedFormRecord, error)
	UpdateShift(ctx context.Context, id string, form models.StatusForm) (*models.SubmittedFormRecord, error)
}
