package repository

import (
	"context"
	"strings"
	"time"
)

// JournalRepo handles the alert journal.
type JournalRepo struct {
	db DBTX
}

func NewJournalRepo(db DBTX) *JournalRepo { return &JournalRepo{db: db} }

func (r *JournalRepo) Insert(ctx context.Context, e JournalEntry) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO alert_journal(id, alert_id, kind, title, message, button, pending, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.AlertID, e.Kind, e.Title, e.Message, e.Button, e.Pending, e.CreatedAt.UTC())
	return err
}

// List returns entries oldest first, keeping the newest Limit when set.
func (r *JournalRepo) List(ctx context.Context, f JournalFilter) ([]JournalEntry, error) {
	var (
		where []string
		args  []any
	)
	if f.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.AlertID != "" {
		where = append(where, "alert_id = ?")
		args = append(args, f.AlertID)
	}
	if !f.Since.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.Since.UTC())
	}
	q := `SELECT id, alert_id, kind, title, message, button, pending, created_at FROM alert_journal`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.AlertID, &e.Kind, &e.Title, &e.Message, &e.Button, &e.Pending, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// CountByKind returns the number of entries per kind.
func (r *JournalRepo) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT kind, COUNT(*) FROM alert_journal GROUP BY kind`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]int{}
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

// Prune deletes entries older than before and returns how many went.
func (r *JournalRepo) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM alert_journal WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
