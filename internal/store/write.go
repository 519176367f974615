package store

import (
	"context"
	"fmt"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

// ReplaceRecords installs records as the whole deck, positions following
// slice order. The decision log is left untouched, so ids decided earlier
// stay hidden if they come back.
func (s *Store) ReplaceRecords(ctx context.Context, records []record.Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("replace records: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if _, err := tx.ExecContext(ctx, "DELETE FROM records"); err != nil {
		return fmt.Errorf("replace records: clear: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records
		(id, position, name, age, zodiac, location, height, media)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("replace records: prepare: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		mediaJSON, err := marshalMedia(r.Media)
		if err != nil {
			return fmt.Errorf("replace records: %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			r.ID, i, r.Name, r.Age, r.Zodiac, r.Location, r.Height, mediaJSON,
		); err != nil {
			return fmt.Errorf("replace records: insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("replace records: commit: %w", err)
	}
	return nil
}

// WriteDecision appends d to the decision log.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - a redelivered decision
// returns inserted=false and changes nothing.
func (s *Store) WriteDecision(ctx context.Context, d decision.Decision) (inserted bool, err error) {
	if !d.Kind.Valid() {
		return false, fmt.Errorf("write decision: invalid kind %q", d.Kind)
	}
	if d.ID == "" || d.RecordID == "" {
		return false, fmt.Errorf("write decision: id and record id are required")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO decisions (id, record_id, kind, decided_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, d.ID, d.RecordID, string(d.Kind), formatTime(d.Timestamp))
	if err != nil {
		return false, fmt.Errorf("write decision: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("write decision: rows affected: %w", err)
	}
	return n > 0, nil
}
