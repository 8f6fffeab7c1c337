// Package session persists the identity of the logged-in driver in the local
// store so it survives restarts of the client.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

// Key is the metadata key the session is stored under.
const Key = "auth-data"

var ErrInvalidSession = models.ErrInvalidSession

// Store reads and writes the single driver session.
type Store struct {
	repo metadata.Repository
	log  logging.Logger
}

func NewStore(repo metadata.Repository, log logging.Logger) *Store {
	return &Store{repo: repo, log: log.With("module", "session")}
}

// Get returns the stored session, or an anonymous one when nothing usable
// is stored. Only repository failures are reported as errors.
func (s *Store) Get(ctx context.Context) (models.DriverSession, error) {
	raw, err := s.repo.Get(ctx, Key)
	if err != nil {
		return models.Anonymous(), fmt.Errorf("load session: %w", err)
	}
	if raw == nil {
		return models.Anonymous(), nil
	}

	var ds models.DriverSession
	if err := json.Unmarshal(raw, &ds); err != nil {
		s.log.Warn(ctx, "stored session is malformed, ignoring", "error", err)
		return models.Anonymous(), nil
	}
	if err := ds.Validate(); err != nil {
		s.log.Warn(ctx, "stored session is invalid, ignoring", "error", err)
		return models.Anonymous(), nil
	}
	return ds, nil
}

// Replace overwrites the stored session with ds.
func (s *Store) Replace(ctx context.Context, ds models.DriverSession) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(ds)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.repo.Set(ctx, Key, raw); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.log.Debug(ctx, "session replaced", "authenticated", ds.IsAuthenticated)
	return nil
}

// Clear forgets the stored session.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
