// Package wasmtest hands out small, hand-assembled wasm binaries for
// exercising internal/vmhost and internal/rewind without depending on
// an external wat2wasm toolchain. Every module here is built directly
// from the wasm binary format grammar (module header, then sections in
// ascending id order); each function is documented with the section it
// encodes.
package wasmtest

// SimpleModule returns a wasm module exporting:
//   - memory "memory" (1 page)
//   - global "g0": mutable i32, initial value 0
//   - func "add" (i32, i32) -> i32: returns the sum of its two args
//   - func "trap" (): unconditionally traps via unreachable
//
// It declares no imports, so it instantiates standalone — useful for
// exercising Guest's memory/global/call surface without any host module
// wiring.
func SimpleModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d, // magic "\0asm"
		0x01, 0x00, 0x00, 0x00, // version 1

		// type section: id=1
		0x01, 0x0a,
		0x02,                         // 2 types
		0x60, 0x02, 0x7f, 0x7f, 0x01, 0x7f, // type0: (i32,i32) -> i32
		0x60, 0x00, 0x00, // type1: () -> ()

		// function section: id=3, funcs [type0, type1]
		0x03, 0x03,
		0x02, 0x00, 0x01,

		// memory section: id=5, 1 memory, min=1 page
		0x05, 0x03,
		0x01, 0x00, 0x01,

		// global section: id=6, 1 global: mutable i32 = 0
		0x06, 0x06,
		0x01,
		0x7f, 0x01, 0x41, 0x00, 0x0b,

		// export section: id=7
		0x07, 0x1c,
		0x03, // 3 exports
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00, // memory -> mem 0
		0x03, 'a', 'd', 'd', 0x00, 0x00, // add -> func 0
		0x04, 't', 'r', 'a', 'p', 0x00, 0x01, // trap -> func 1
		0x02, 'g', '0', 0x03, 0x00, // g0 -> global 0

		// code section: id=10
		0x0a, 0x0d,
		0x02, // 2 function bodies
		0x07, 0x00, 0x20, 0x00, 0x20, 0x01, 0x6a, 0x0b, // add: local.get 0; local.get 1; i32.add; end
		0x03, 0x00, 0x00, 0x0b, // trap: unreachable; end
	}
}

// TriggerOnStoreModule returns a wasm module that imports a single host
// function "env"."on_store" (i32, i32) -> () and exports:
//   - memory "memory" (1 page)
//   - func "trigger" (): calls on_store(5, 10)
//
// It exists to validate that a host module built by vmhost actually
// receives calls from guest code, independent of the fuller undo-record
// bookkeeping tested at the Guest level.
func TriggerOnStoreModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d,
		0x01, 0x00, 0x00, 0x00,

		// type section: id=1
		0x01, 0x09,
		0x02,
		0x60, 0x02, 0x7f, 0x7f, 0x00, // type0: (i32,i32) -> ()
		0x60, 0x00, 0x00, // type1: () -> ()

		// import section: id=2
		0x02, 0x10,
		0x01, // 1 import
		0x03, 'e', 'n', 'v',
		0x08, 'o', 'n', '_', 's', 't', 'o', 'r', 'e',
		0x00, 0x00, // func, type0

		// function section: id=3, local funcs [type1]
		0x03, 0x02,
		0x01, 0x01,

		// memory section: id=5
		0x05, 0x03,
		0x01, 0x00, 0x01,

		// export section: id=7
		0x07, 0x14,
		0x02,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x07, 't', 'r', 'i', 'g', 'g', 'e', 'r', 0x00, 0x01, // trigger -> func 1 (0 is the import)

		// code section: id=10
		0x0a, 0x0a,
		0x01,
		0x08, 0x00, 0x41, 0x05, 0x41, 0x0a, 0x10, 0x00, 0x0b, // trigger: i32.const 5; i32.const 10; call 0; end
	}
}

// ScenarioModule returns a wasm module that imports "env"."on_global_set"
// (i32) -> () and exports:
//   - memory "memory" (1 page)
//   - global "g0": mutable i32, initial value 0
//   - func "inc" (): calls on_global_set(0), then sets g0 = g0 + 1
//   - func "tick" (): identical body to "inc" — a second export name so
//     tests can exercise the recurring-tick driver against the same
//     mutation independently of manually-submitted calls
//   - func "noop" (): does nothing
//
// It is a faithful (if minimal) instrumented guest: every mutation to
// its one persistent global is preceded by the host callback that would
// journal it, exactly as spec §4.1 requires. This is enough to drive
// internal/core's CallAt/CallAndRevert/AdvanceTime/ForgetBefore against
// a real wazero-instantiated module rather than a hand-rolled fake.
func ScenarioModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d,
		0x01, 0x00, 0x00, 0x00,

		// type section: id=1
		0x01, 0x08,
		0x02,
		0x60, 0x01, 0x7f, 0x00, // type0: (i32) -> ()
		0x60, 0x00, 0x00, // type1: () -> ()

		// import section: id=2
		0x02, 0x15,
		0x01,
		0x03, 'e', 'n', 'v',
		0x0d, 'o', 'n', '_', 'g', 'l', 'o', 'b', 'a', 'l', '_', 's', 'e', 't',
		0x00, 0x00, // func, type0

		// function section: id=3, local funcs [inc, noop, tick] all type1
		0x03, 0x04,
		0x03, 0x01, 0x01, 0x01,

		// memory section: id=5
		0x05, 0x03,
		0x01, 0x00, 0x01,

		// global section: id=6, mutable i32 = 0
		0x06, 0x06,
		0x01,
		0x7f, 0x01, 0x41, 0x00, 0x0b,

		// export section: id=7
		0x07, 0x23,
		0x05,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x03, 'i', 'n', 'c', 0x00, 0x01,
		0x04, 'n', 'o', 'o', 'p', 0x00, 0x02,
		0x04, 't', 'i', 'c', 'k', 0x00, 0x03,
		0x02, 'g', '0', 0x03, 0x00,

		// code section: id=10
		0x0a, 0x20,
		0x03,
		// inc: i32.const 0; call 0 (on_global_set); global.get 0; i32.const 1; i32.add; global.set 0; end
		0x0d, 0x00, 0x41, 0x00, 0x10, 0x00, 0x23, 0x00, 0x41, 0x01, 0x6a, 0x24, 0x00, 0x0b,
		// noop: end
		0x02, 0x00, 0x0b,
		// tick: identical to inc
		0x0d, 0x00, 0x41, 0x00, 0x10, 0x00, 0x23, 0x00, 0x41, 0x01, 0x6a, 0x24, 0x00, 0x0b,
	}
}

// MemoryGrowModule returns a wasm module that imports "env"."on_grow"
// (i32) -> () and exports:
//   - memory "memory" (1 page, unbounded max)
//   - func "alloc" (): calls on_grow(1), grows memory by 1 page, then
//     writes 0xAB at byte offset 65536 (PAGE_SIZE) — the start of the
//     newly grown page
//   - func "noop" (): does nothing
//
// It exercises spec §8 concrete scenario 3 ("Memory-grow undo"): alloc's
// mutation is journalled only as a MemoryGrow record (the write itself
// lands entirely within the page that record's rewind discards), so
// undoing it — via a late call_at insert ahead of alloc's timestamp —
// must go through vmhost.Guest.Reinstantiate rather than a plain byte
// restore, and replaying alloc back in afterward must reproduce both
// the grown page count and the 0xAB byte.
func MemoryGrowModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d,
		0x01, 0x00, 0x00, 0x00,

		// type section: id=1
		0x01, 0x08,
		0x02,
		0x60, 0x01, 0x7f, 0x00, // type0: (i32) -> ()
		0x60, 0x00, 0x00, // type1: () -> ()

		// import section: id=2
		0x02, 0x0f,
		0x01,
		0x03, 'e', 'n', 'v',
		0x07, 'o', 'n', '_', 'g', 'r', 'o', 'w',
		0x00, 0x00, // func, type0

		// function section: id=3, local funcs [alloc, noop] both type1
		0x03, 0x03,
		0x02, 0x01, 0x01,

		// memory section: id=5, min=1 page, no max
		0x05, 0x03,
		0x01, 0x00, 0x01,

		// export section: id=7
		0x07, 0x19,
		0x03,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x05, 'a', 'l', 'l', 'o', 'c', 0x00, 0x01,
		0x04, 'n', 'o', 'o', 'p', 0x00, 0x02,

		// code section: id=10
		0x0a, 0x1a,
		0x02,
		// alloc: i32.const 1; call 0 (on_grow); i32.const 1; memory.grow 0;
		// drop; i32.const 65536; i32.const 0xab; i32.store8 align=0 offset=0; end
		0x15, 0x00,
		0x41, 0x01,
		0x10, 0x00,
		0x41, 0x01,
		0x40, 0x00,
		0x1a,
		0x41, 0x80, 0x80, 0x04,
		0x41, 0xab, 0x01,
		0x3a, 0x00, 0x00,
		0x0b,
		// noop: end
		0x02, 0x00, 0x0b,
	}
}

// RewriterModule returns a wasm module implementing the spec §6
// shared-buffer ABI as an identity transform: whatever bytes a caller
// writes into the region reserve_space hands back is what
// get_output_ptr/get_output_len describe afterwards. It exports:
//   - memory "memory" (1 page)
//   - func "reserve_space" (i32) -> i32: records the requested length
//     in global g0 and always returns pointer 0
//   - func "prepare_wasm" (): no-op — the identity transform needs no
//     work, since input and output share the same buffer
//   - func "get_output_ptr" () -> i32: always 0
//   - func "get_output_len" () -> i32: the length last passed to
//     reserve_space
//
// This is enough to exercise internal/rewriter's Client against a real
// wazero-instantiated module without hand-assembling anything that
// actually parses or rewrites wasm bytecode, which is out of scope.
func RewriterModule() []byte {
	return []byte{
		0x00, 0x61, 0x73, 0x6d,
		0x01, 0x00, 0x00, 0x00,

		// type section: id=1
		0x01, 0x0d,
		0x03,
		0x60, 0x01, 0x7f, 0x01, 0x7f, // type0: (i32) -> i32
		0x60, 0x00, 0x00, // type1: () -> ()
		0x60, 0x00, 0x01, 0x7f, // type2: () -> i32

		// function section: id=3, funcs [reserve_space, prepare_wasm, get_output_ptr, get_output_len]
		0x03, 0x05,
		0x04, 0x00, 0x01, 0x02, 0x02,

		// memory section: id=5
		0x05, 0x03,
		0x01, 0x00, 0x01,

		// global section: id=6, mutable i32 = 0 (holds the reserved length)
		0x06, 0x06,
		0x01,
		0x7f, 0x01, 0x41, 0x00, 0x0b,

		// export section: id=7
		0x07, 0x4b,
		0x05,
		0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
		0x0d, 'r', 'e', 's', 'e', 'r', 'v', 'e', '_', 's', 'p', 'a', 'c', 'e', 0x00, 0x00,
		0x0c, 'p', 'r', 'e', 'p', 'a', 'r', 'e', '_', 'w', 'a', 's', 'm', 0x00, 0x01,
		0x0e, 'g', 'e', 't', '_', 'o', 'u', 't', 'p', 'u', 't', '_', 'p', 't', 'r', 0x00, 0x02,
		0x0e, 'g', 'e', 't', '_', 'o', 'u', 't', 'p', 'u', 't', '_', 'l', 'e', 'n', 0x00, 0x03,

		// code section: id=10
		0x0a, 0x17,
		0x04,
		// reserve_space: local.get 0; global.set 0; i32.const 0; end
		0x08, 0x00, 0x20, 0x00, 0x24, 0x00, 0x41, 0x00, 0x0b,
		// prepare_wasm: end
		0x02, 0x00, 0x0b,
		// get_output_ptr: i32.const 0; end
		0x04, 0x00, 0x41, 0x00, 0x0b,
		// get_output_len: global.get 0; end
		0x04, 0x00, 0x23, 0x00, 0x0b,
	}
}
