package journal

import "fmt"

// ValueType tags the wasm-level type of a global, so restoration during
// rewind is type-exact rather than a bag of untyped bits (§3, §9
// "Dynamic typing of globals").
type ValueType uint8

const (
	// I32 is a 32-bit integer global.
	I32 ValueType = iota
	// I64 is a 64-bit integer global.
	I64
	// F32 is a 32-bit float global.
	F32
	// F64 is a 64-bit float global.
	F64
)

func (t ValueType) String() string {
	switch t {
	case I32:
		return "i32"
	case I64:
		return "i64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	default:
		return fmt.Sprintf("valuetype(%d)", uint8(t))
	}
}

// Scalar is a typed VM global value. Values are stored as raw wasm
// bits (uint64, matching wazero's api.Global/api.MutableGlobal
// representation) tagged with their declared type, so an i32 zero and
// an f32 zero are never confused during restoration.
type Scalar struct {
	Type ValueType
	Bits uint64
}

// I32Scalar builds a Scalar for a 32-bit integer global.
func I32Scalar(v uint32) Scalar { return Scalar{Type: I32, Bits: uint64(v)} }

// I64Scalar builds a Scalar for a 64-bit integer global.
func I64Scalar(v uint64) Scalar { return Scalar{Type: I64, Bits: v} }

// F32Scalar builds a Scalar for a 32-bit float global, stored bit-for-bit.
func F32Scalar(bits uint32) Scalar { return Scalar{Type: F32, Bits: uint64(bits)} }

// F64Scalar builds a Scalar for a 64-bit float global, stored bit-for-bit.
func F64Scalar(bits uint64) Scalar { return Scalar{Type: F64, Bits: bits} }

// Kind distinguishes the three UndoRecord variants (§3).
type Kind uint8

const (
	// MemoryWrite undoes a store of len(OldBytes) bytes at Location.
	MemoryWrite Kind = iota
	// MemoryGrow undoes a linear memory growth back to OldPageCount pages.
	MemoryGrow
	// GlobalWrite undoes an overwrite of the global at GlobalIndex.
	GlobalWrite
)

func (k Kind) String() string {
	switch k {
	case MemoryWrite:
		return "memory_write"
	case MemoryGrow:
		return "memory_grow"
	case GlobalWrite:
		return "global_write"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Record is a tagged union of the three UndoRecord cases from spec §3.
// Only the fields relevant to Kind are populated; callers must switch on
// Kind before reading them, mirroring how the source captures these as
// a discriminated variant rather than a Go interface — a plain struct
// keeps the hot append path allocation-free.
type Record struct {
	Kind Kind

	// MemoryWrite fields.
	Location uint32
	OldBytes []byte

	// MemoryGrow fields.
	OldPageCount uint32

	// GlobalWrite fields.
	GlobalIndex uint32
	OldValue    Scalar
}

// NewMemoryWrite builds a MemoryWrite undo record.
func NewMemoryWrite(location uint32, oldBytes []byte) Record {
	return Record{Kind: MemoryWrite, Location: location, OldBytes: oldBytes}
}

// NewMemoryGrow builds a MemoryGrow undo record.
func NewMemoryGrow(oldPageCount uint32) Record {
	return Record{Kind: MemoryGrow, OldPageCount: oldPageCount}
}

// NewGlobalWrite builds a GlobalWrite undo record.
func NewGlobalWrite(globalIndex uint32, oldValue Scalar) Record {
	return Record{Kind: GlobalWrite, GlobalIndex: globalIndex, OldValue: oldValue}
}
