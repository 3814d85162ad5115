package trace

import (
	"context"
	"database/sql"
	"fmt"
)

// CallRecord is a Call Log entry as stored: args are left as canonical
// JSON text rather than reconstructed into an ir.Value, since a trace
// database is a diagnostic artifact for tooling (diffing two runs,
// feeding a golden test) rather than a second source of truth the
// engine replays from.
type CallRecord struct {
	ID                  int64
	Time                int64
	Offset              int64
	PlayerID            int64
	Name                string
	ArgsJSON            string
	JournalLengthBefore int
	TraceHash           string
	RecordedSeq         int64
}

// SnapshotRecord is a memory-image hash checkpoint as stored.
type SnapshotRecord struct {
	ID          int64
	CallID      sql.NullInt64
	Time        int64
	MemoryHash  string
	RecordedSeq int64
}

// ReadCallsSince returns every call at or after fromTime, ordered the
// way the Call Log itself orders entries: (time, player_id, offset).
func (s *Store) ReadCallsSince(ctx context.Context, fromTime int64) ([]CallRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, offset, player_id, name, args, journal_length_before, trace_hash, recorded_seq
		FROM calls
		WHERE time >= ?
		ORDER BY time ASC, player_id ASC, offset ASC
	`, fromTime)
	if err != nil {
		return nil, fmt.Errorf("trace: read calls: %w", err)
	}
	defer rows.Close()

	var out []CallRecord
	for rows.Next() {
		var rec CallRecord
		if err := rows.Scan(&rec.ID, &rec.Time, &rec.Offset, &rec.PlayerID, &rec.Name,
			&rec.ArgsJSON, &rec.JournalLengthBefore, &rec.TraceHash, &rec.RecordedSeq); err != nil {
			return nil, fmt.Errorf("trace: read calls: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trace: read calls: %w", err)
	}
	return out, nil
}

// ReadCallByTraceHash looks up a single call by its content-addressed
// hash, used by golden tests to confirm a replayed run produced the
// same logical call at the same point in the timeline.
func (s *Store) ReadCallByTraceHash(ctx context.Context, hash string) (*CallRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, time, offset, player_id, name, args, journal_length_before, trace_hash, recorded_seq
		FROM calls
		WHERE trace_hash = ?
	`, hash)

	var rec CallRecord
	if err := row.Scan(&rec.ID, &rec.Time, &rec.Offset, &rec.PlayerID, &rec.Name,
		&rec.ArgsJSON, &rec.JournalLengthBefore, &rec.TraceHash, &rec.RecordedSeq); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("trace: read call by hash: %w", err)
	}
	return &rec, nil
}

// ReadSnapshotsSince returns every memory-image checkpoint at or after
// fromTime, in recording order.
func (s *Store) ReadSnapshotsSince(ctx context.Context, fromTime int64) ([]SnapshotRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, call_id, time, memory_hash, recorded_seq
		FROM snapshots
		WHERE time >= ?
		ORDER BY recorded_seq ASC
	`, fromTime)
	if err != nil {
		return nil, fmt.Errorf("trace: read snapshots: %w", err)
	}
	defer rows.Close()

	var out []SnapshotRecord
	for rows.Next() {
		var rec SnapshotRecord
		if err := rows.Scan(&rec.ID, &rec.CallID, &rec.Time, &rec.MemoryHash, &rec.RecordedSeq); err != nil {
			return nil, fmt.Errorf("trace: read snapshots: scan: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("trace: read snapshots: %w", err)
	}
	return out, nil
}
