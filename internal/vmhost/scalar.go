package vmhost

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"

	"github.com/foldrun/timefold/internal/journal"
)

// PageSize is the fixed wasm linear-memory page size (spec §4.4).
const PageSize = 65536

// scalarFromGlobal reads a wazero global's current value, tagging it
// with its declared wasm type (§3: "scalar carries the full VM-level
// type... so restoration is type-exact").
func scalarFromGlobal(g api.Global) journal.Scalar {
	return journal.Scalar{
		Type: journalType(g.Type()),
		Bits: g.Get(),
	}
}

func journalType(t api.ValueType) journal.ValueType {
	switch t {
	case api.ValueTypeI32:
		return journal.I32
	case api.ValueTypeI64:
		return journal.I64
	case api.ValueTypeF32:
		return journal.F32
	case api.ValueTypeF64:
		return journal.F64
	default:
		// externref/funcref globals are not persistent VM state in the
		// sense spec §3 cares about (they can't be journaled as undo
		// bits); guests that mutate them are outside this engine's
		// contract.
		panic(fmt.Sprintf("vmhost: unsupported global value type %v", t))
	}
}

func apiType(t journal.ValueType) api.ValueType {
	switch t {
	case journal.I32:
		return api.ValueTypeI32
	case journal.I64:
		return api.ValueTypeI64
	case journal.F32:
		return api.ValueTypeF32
	case journal.F64:
		return api.ValueTypeF64
	default:
		panic(fmt.Sprintf("vmhost: unsupported journal value type %v", t))
	}
}

// checkTypeMatch guards against restoring a scalar of the wrong type
// into a global slot — this would silently corrupt guest state (§9).
func checkTypeMatch(g api.Global, want journal.ValueType) error {
	got := journalType(g.Type())
	if got != want {
		return fmt.Errorf("vmhost: global type mismatch: recorded %s, global is %s", want, got)
	}
	return nil
}
