package drafts

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/driverportal/internal/client/models"
	"github.com/dmitrijs2005/driverportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/driverportal/internal/logging"
)

func TestStore_SaveLoadSameDay(t *testing.T) {
	ctx := context.Background()
	s := NewStore(metadata.NewMemoryRepository(), logging.Nop())

	form := models.NewStatusForm("2025-01-10", "08:15:00")
	form.Load = "12"
	form.DeliveryAreas = []string{"North", "North"}
	require.NoError(t, s.Save(ctx, form))

	got, err := s.Load(ctx, "2025-01-10")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, form, *got)
}

func TestStore_LoadAbsent(t *testing.T) {
	s := NewStore(metadata.NewMemoryRepository(), logging.Nop())
	got, err := s.Load(context.Background(), "2025-01-10")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestStore_StaleDraftIsCleared(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	s := NewStore(repo, logging.Nop())

	require.NoError(t, s.Save(ctx, models.NewStatusForm("2025-01-09", "17:00:00")))

	got, err := s.Load(ctx, "2025-01-10")
	require.NoError(t, err)
	require.Nil(t, got)
	require.NotContains(t, repo.Snapshot(), Key)
}

func TestStore_MalformedDraftIsClearedAndLogged(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	require.NoError(t, repo.Set(ctx, Key, []byte("not json")))

	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	s := NewStore(repo, log)

	got, err := s.Load(ctx, "2025-01-10")
	require.NoError(t, err)
	require.Nil(t, got)
	require.NotContains(t, repo.Snapshot(), Key)
	require.Contains(t, buf.String(), "discarding malformed draft")
	require.Contains(t, buf.String(), "module=drafts")
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	repo := metadata.NewMemoryRepository()
	s := NewStore(repo, logging.Nop())

	require.NoError(t, s.Save(ctx, models.NewStatusForm("2025-01-10", "08:00:00")))
	require.NoError(t, s.Clear(ctx))
	require.Empty(t, repo.Snapshot())
	require.NoError(t, s.Clear(ctx))
}
