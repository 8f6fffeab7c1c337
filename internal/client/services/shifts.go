package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/driverportal/internal/client/api"
	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

// ShiftService reads and writes the driver's daily status records.
// Errors from the backend keep their api sentinel so callers can match
// api.ErrUnauthorized and friends with errors.Is.
type ShiftService interface {
	List(ctx context.Context, page int) (*models.FormListResponse, error)
	Get(ctx context.Context, id string) (*models.SubmittedFormRecord, error)
	Create(ctx context.Context, form models.StatusForm) (*models.SubmittedFormRecord, error)
	Update(ctx context.Context, id string, form models.StatusForm) (*models.SubmittedFormRecord, error)
}

type shiftService struct {
	client api.Client
	log    logging.Logger
}

func NewShiftService(client api.Client, log logging.Logger) ShiftService {
	return &shiftService{client: client, log: log.With("module", "shifts")}
}

func (s *shiftService) List(ctx context.Context, page int) (*models.FormListResponse, error) {
	resp, err := s.client.ListShifts(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("list page %d: %w", page, err)
	}
	s.log.Debug(ctx, "forms listed", "page", page, "count", int(resp.Count), "results", len(resp.Results))
	return resp, nil
}

func (s *shiftService) Get(ctx context.Context, id string) (*models.SubmittedFormRecord, error) {
	rec, err := s.client.GetShift(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get form %s: %w", id, err)
	}
	return rec, nil
}

func (s *shiftService) Create(ctx context.Context, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	rec, err := s.client.CreateShift(ctx, form)
	if err != nil {
		s.log.Warn(ctx, "form submit failed", "date", form.Date, "error", err)
		return nil, fmt.Errorf("create form: %w", err)
	}
	s.log.Info(ctx, "form submitted", "id", rec.ID.String(), "date", rec.Date, "status", rec.StatusLabel())
	return rec, nil
}

func (s *shiftService) Update(ctx context.Context, id string, form models.StatusForm) (*models.SubmittedFormRecord, error) {
	rec, err := s.client.UpdateShift(ctx, id, form)
	if err != nil {
		s.log.Warn(ctx, "form update failed", "id", id, "error", err)
		return nil, fmt.Errorf("update form %s: %w", id, err)
	}
	s.log.Info(ctx, "form updated", "id", id, "date", rec.Date)
	return rec, nil
}
