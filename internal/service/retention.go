package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jask/voltalert/internal/database"
	"github.com/jask/voltalert/internal/database/repository"
	"github.com/jask/voltalert/internal/logging"
)

// Retention removes old journal entries and finished charging sessions.
type Retention struct {
	DB  *sql.DB
	Log *logging.Logger
}

type PruneResult struct {
	Journal  int64
	Sessions int64
}

// Prune deletes rows older than retention in one transaction. A zero
// retention keeps everything.
func (r *Retention) Prune(ctx context.Context, retention time.Duration, now time.Time) (PruneResult, error) {
	var res PruneResult
	if retention <= 0 {
		return res, nil
	}
	before := now.Add(-retention)
	err := database.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		n, err := repository.NewJournalRepo(tx).Prune(ctx, before)
		if err != nil {
			return fmt.Errorf("prune journal: %w", err)
		}
		res.Journal = n
		n, err = repository.NewSessionRepo(tx).PruneFinished(ctx, before)
		if err != nil {
			return fmt.Errorf("prune sessions: %w", err)
		}
		res.Sessions = n
		return nil
	})
	if err != nil {
		return PruneResult{}, err
	}
	if res.Journal+res.Sessions > 0 {
		r.Log.Infof("pruned %d journal entries and %d sessions older than %s", res.Journal, res.Sessions, retention)
	}
	return res, nil
}
