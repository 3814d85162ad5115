package rewind

import (
	"context"
	"fmt"

	"github.com/foldrun/timefold/internal/journal"
	"github.com/foldrun/timefold/internal/vmhost"
)

// Guest is the subset of *vmhost.Guest the Rewinder needs. Declared as
// an interface so this package's tests can substitute a fake VM.
type Guest interface {
	WriteBytes(offset uint32, data []byte) bool
	GlobalSet(index uint32, value journal.Scalar) error
	ReadBytes(offset, length uint32) ([]byte, bool)
	Reinstantiate(ctx context.Context, targetPages uint32, copiedBytes []byte) error
}

var _ Guest = (*vmhost.Guest)(nil)

// Rewinder applies a Journal's undo records in reverse to bring a Guest
// back to a previously observed journal length (spec §4.4).
type Rewinder struct {
	journal *journal.Journal
	guest   Guest
}

// New builds a Rewinder over the given journal and guest. Both must
// belong to the same CoreState; the Rewinder does not own either.
func New(j *journal.Journal, g Guest) *Rewinder {
	return &Rewinder{journal: j, guest: g}
}

// RewindTo pops and inverts journal records until the journal's
// length equals target. target must not exceed the current length.
//
// A MemoryGrow record's inverse reinstantiates the guest module from
// its original compiled image at the record's OldPageCount, copying
// forward the first OldPageCount*PageSize bytes of the memory that
// existed just before this call. Any GlobalWrite records that logically
// precede the MemoryGrow in journal order are popped and applied after
// reinstantiation completes, in the same reverse sweep, which is what
// restores globals a fresh instantiation would otherwise reset (spec
// §4.4 "Why reinstantiation is safe").
func (r *Rewinder) RewindTo(ctx context.Context, target int) error {
	current := r.journal.Len()
	if target < 0 || target > current {
		return fmt.Errorf("rewind: target %d out of range [0, %d]", target, current)
	}

	for r.journal.Len() > target {
		rec := r.journal.PopTail()
		if err := r.applyInverse(ctx, rec); err != nil {
			return fmt.Errorf("rewind: apply inverse of %s record: %w", rec.Kind, err)
		}
	}
	return nil
}

func (r *Rewinder) applyInverse(ctx context.Context, rec journal.Record) error {
	switch rec.Kind {
	case journal.MemoryWrite:
		if !r.guest.WriteBytes(rec.Location, rec.OldBytes) {
			return fmt.Errorf("write %d bytes at offset %d", len(rec.OldBytes), rec.Location)
		}
		return nil

	case journal.GlobalWrite:
		return r.guest.GlobalSet(rec.GlobalIndex, rec.OldValue)

	case journal.MemoryGrow:
		targetBytes := uint64(rec.OldPageCount) * vmhost.PageSize
		copied, ok := r.guest.ReadBytes(0, uint32(targetBytes))
		if !ok {
			return fmt.Errorf("read %d bytes to carry forward across reinstantiation", targetBytes)
		}
		return r.guest.Reinstantiate(ctx, rec.OldPageCount, copied)

	default:
		return fmt.Errorf("unknown undo record kind %s", rec.Kind)
	}
}
