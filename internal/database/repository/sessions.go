package repository

import (
	"context"
	"database/sql"
	"time"
)

// SessionRepo handles charging sessions.
type SessionRepo struct {
	db DBTX
}

func NewSessionRepo(db DBTX) *SessionRepo { return &SessionRepo{db: db} }

func (r *SessionRepo) Upsert(ctx context.Context, s ChargingSession) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO charging_sessions(id, site, connector, state, energy_wh, failure, started_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		state=excluded.state,
		energy_wh=excluded.energy_wh,
		failure=excluded.failure,
		updated_at=excluded.updated_at;
	`, s.ID, s.Site, s.Connector, s.State, s.EnergyWh, s.Failure, s.StartedAt.UTC(), s.UpdatedAt.UTC())
	return err
}

func (r *SessionRepo) Get(ctx context.Context, id string) (*ChargingSession, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, site, connector, state, energy_wh, failure, started_at, updated_at
	FROM charging_sessions WHERE id = ?`, id)
	var s ChargingSession
	if err := row.Scan(&s.ID, &s.Site, &s.Connector, &s.State, &s.EnergyWh, &s.Failure, &s.StartedAt, &s.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepo) List(ctx context.Context) ([]ChargingSession, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, site, connector, state, energy_wh, failure, started_at, updated_at
	FROM charging_sessions ORDER BY started_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ChargingSession
	for rows.Next() {
		var s ChargingSession
		if err := rows.Scan(&s.ID, &s.Site, &s.Connector, &s.State, &s.EnergyWh, &s.Failure, &s.StartedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// PruneFinished deletes completed and failed sessions last updated before
// before. Sessions still in progress are kept.
func (r *SessionRepo) PruneFinished(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	DELETE FROM charging_sessions
	WHERE state IN ('completed', 'failed') AND updated_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
