// Package drafts keeps the in-progress daily status form in the local store
// so an unfinished form survives closing the client.
package drafts

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/logging"
	"github.com/dmitrijs2005/driverportal/internal/timex"
)

// Key is the single draft slot.
const Key = "dailyStatusFormDraft"

type Store struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("module", "drafts")}
}

// Save overwrites the draft with form, exactly as given.
func (s *Store) Save(ctx context.Context, form models.StatusForm) error {
	raw, err := json.Marshal(form)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.repo.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Load returns the draft for day. It returns (nil, nil) when there is no
// draft, when the stored one cannot be decoded, or when it belongs to
// another day; the latter two are removed.
func (s *Store) Load(ctx context.Context, day string) (*models.StatusForm, error) {
	raw, err := s.repo.Get(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if raw == nil {
		return nil, nil
	}

	var form models.StatusForm
	if err := json.Unmarshal(raw, &form); err != nil {
		s.log.Warn(ctx, "discarding malformed draft", "error", err)
		return nil, s.Clear(ctx)
	}

	draftDay, err := timex.NormalizeDay(form.Date)
	if err != nil || draftDay != day {
		s.log.Info(ctx, "discarding stale draft", "draft_date", form.Date, "day", day)
		return nil, s.Clear(ctx)
	}

	if form.DeliveryAreas == nil {
		form.DeliveryAreas = []string{}
	}
	return &form, nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear draft: %w", err)
	}
	return nil
}
