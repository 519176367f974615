package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/swipedeck/internal/decision"
	"github.com/roach88/swipedeck/internal/record"
)

const recordColumns = "r.id, r.name, r.age, r.zodiac, r.location, r.height, r.media"

// ReadRecords returns the whole deck in position order, decided or not.
// Returns an empty slice (not nil) when the deck is empty.
func (s *Store) ReadRecords(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records r
		ORDER BY r.position ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	return scanRecords(rows)
}

// ReadUndecided returns the records still to be shown, in position order.
func (s *Store) ReadUndecided(ctx context.Context) ([]record.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM records r
		WHERE NOT EXISTS (
			SELECT 1 FROM decisions d
			WHERE d.record_id = r.id
			  AND d.kind IN ('accept', 'reject')
			  AND NOT EXISTS (
				SELECT 1 FROM decisions w
				WHERE w.record_id = r.id
				  AND w.kind = 'rewind'
				  AND w.seq > d.seq
			  )
		)
		ORDER BY r.position ASC, r.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query undecided records: %w", err)
	}
	return scanRecords(rows)
}

// ReadDecisions returns the decision log in insertion order.
func (s *Store) ReadDecisions(ctx context.Context) ([]decision.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, record_id, kind, decided_at
		FROM decisions
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []decision.Decision{}
	for rows.Next() {
		var (
			d         decision.Decision
			kind      string
			decidedAt string
		)
		if err := rows.Scan(&d.ID, &d.RecordID, &kind, &decidedAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		d.Kind = decision.Kind(kind)
		if d.Timestamp, err = parseTime(decidedAt); err != nil {
			return nil, err
		}
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	defer rows.Close()

	records := []record.Record{}
	for rows.Next() {
		var (
			r         record.Record
			mediaJSON string
		)
		if err := rows.Scan(&r.ID, &r.Name, &r.Age, &r.Zodiac, &r.Location, &r.Height, &mediaJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		media, err := unmarshalMedia(mediaJSON)
		if err != nil {
			return nil, fmt.Errorf("record %s: %w", r.ID, err)
		}
		r.Media = media
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
