package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/voltalert/internal/database"
	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/events"
	"github.com/jask/voltalert/internal/logging"
)

func TestRetentionPrunesJournalAndFinishedSessions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "retention.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-10 * 24 * time.Hour)
	journal := &JournalService{Journal: repository.NewJournalRepo(db), Log: logging.Discard()}
	journal.Record(events.Event{Type: events.AlertShown, Title: "old", Button: -1, Timestamp: old})
	journal.Record(events.Event{Type: events.AlertShown, Title: "new", Button: -1, Timestamp: now.Add(-time.Hour)})

	sessions := repository.NewSessionRepo(db)
	for _, s := range []repository.ChargingSession{
		{ID: "done", Site: "Oslo S", Connector: 1, State: "completed", StartedAt: old, UpdatedAt: old},
		{ID: "stuck", Site: "Oslo S", Connector: 2, State: "charging", StartedAt: old, UpdatedAt: old},
		{ID: "recent", Site: "Oslo S", Connector: 3, State: "failed", StartedAt: now, UpdatedAt: now},
	} {
		require.NoError(t, sessions.Upsert(ctx, s))
	}

	r := &Retention{DB: db, Log: logging.Discard()}
	res, err := r.Prune(ctx, 0, now)
	require.NoError(t, err)
	require.Zero(t, res, "zero retention keeps everything")

	res, err = r.Prune(ctx, 7*24*time.Hour, now)
	require.NoError(t, err)
	require.Equal(t, PruneResult{Journal: 1, Sessions: 1}, res)

	left, err := journal.History(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "new", left[0].Title)

	list, err := sessions.List(ctx)
	require.NoError(t, err)
	ids := []string{}
	for _, s := range list {
		ids = append(ids, s.ID)
	}
	require.ElementsMatch(t, []string{"stuck", "recent"}, ids)
}

func TestRetentionRollsBackOnFailure(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "rollback.db"))
	require.NoError(t, err)

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	journal := &JournalService{Journal: repository.NewJournalRepo(db), Log: logging.Discard()}
	journal.Record(events.Event{Type: events.AlertShown, Title: "old", Button: -1, Timestamp: now.Add(-48 * time.Hour)})
	_, err = db.ExecContext(ctx, `DROP TABLE charging_sessions`)
	require.NoError(t, err)

	r := &Retention{DB: db, Log: logging.Discard()}
	_, err = r.Prune(ctx, time.Hour, now)
	require.ErrorContains(t, err, "prune sessions")

	left, err := journal.History(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, left, 1, "journal delete rolled back with the failed session delete")
	require.NoError(t, db.Close())
}
