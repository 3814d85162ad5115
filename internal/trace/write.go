package trace

import (
	"context"
	"fmt"

	"github.com/foldrun/timefold/internal/ir"
	"github.com/foldrun/timefold/internal/timeline"
)

// WriteCall records one Call Log entry. Uses INSERT OR IGNORE keyed on
// (time, player_id, offset) for idempotency: replaying the same
// scenario into the same trace database twice must not duplicate rows.
func (s *Store) WriteCall(ctx context.Context, entry timeline.Entry) (int64, error) {
	argsJSON, err := ir.MarshalCanonical(entry.Args)
	if err != nil {
		return 0, fmt.Errorf("trace: write call: marshal args: %w", err)
	}

	traceHash, err := ir.CallTraceHash(entry.Name, entry.Args, entry.Timestamp.Time, entry.Timestamp.Offset, entry.Timestamp.PlayerID)
	if err != nil {
		return 0, fmt.Errorf("trace: write call: hash: %w", err)
	}

	s.seq++
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO calls
		(time, offset, player_id, name, args, journal_length_before, trace_hash, recorded_seq)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(time, player_id, offset) DO NOTHING
	`,
		entry.Timestamp.Time,
		entry.Timestamp.Offset,
		entry.Timestamp.PlayerID,
		entry.Name,
		string(argsJSON),
		entry.JournalLengthBefore,
		traceHash,
		s.seq,
	)
	if err != nil {
		return 0, fmt.Errorf("trace: write call: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("trace: write call: last insert id: %w", err)
	}
	return id, nil
}

// WriteSnapshot records a memory-image hash checkpoint, optionally
// attributed to the call that produced it. Pass callID 0 for a
// checkpoint that isn't tied to a specific call (e.g. right after a
// reset).
func (s *Store) WriteSnapshot(ctx context.Context, callID int64, atTime int64, memoryHash string) (int64, error) {
	s.seq++

	var result interface {
		LastInsertId() (int64, error)
	}
	var err error
	if callID == 0 {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO snapshots (call_id, time, memory_hash, recorded_seq)
			VALUES (NULL, ?, ?, ?)
		`, atTime, memoryHash, s.seq)
	} else {
		result, err = s.db.ExecContext(ctx, `
			INSERT INTO snapshots (call_id, time, memory_hash, recorded_seq)
			VALUES (?, ?, ?, ?)
		`, callID, atTime, memoryHash, s.seq)
	}
	if err != nil {
		return 0, fmt.Errorf("trace: write snapshot: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("trace: write snapshot: last insert id: %w", err)
	}
	return id, nil
}
