package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed hashing. The version suffix
// lets the hashing scheme evolve without colliding with hashes computed
// under an earlier scheme.
const (
	DomainCallTrace = "timefold/call-trace/v1"
	DomainMemory    = "timefold/memory-image/v1"
)

// hashWithDomain computes SHA-256 over domain || 0x00 || data. The null
// separator prevents a crafted domain/data boundary from producing a
// collision with a different (domain, data) pair.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// CallTraceHash computes a content-addressed hash for a (name, args,
// timestamp) triple. The trace store keys recorded calls by it, so two
// replays that produced the identical logical call share one hash.
func CallTraceHash(name string, args Value, timeVal, offset, playerID int64) (string, error) {
	obj := Object{
		"name":     String(name),
		"args":     args,
		"time":     Int(timeVal),
		"offset":   Int(offset),
		"playerId": Int(playerID),
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("CallTraceHash: %w", err)
	}
	return hashWithDomain(DomainCallTrace, canonical), nil
}

// MemoryImageHash hashes a raw linear-memory snapshot plus its globals.
// The CLI's run and reset commands report it so two runs' final memory
// can be compared by hash.
func MemoryImageHash(memory []byte, globals []byte) string {
	h := sha256.New()
	h.Write([]byte(DomainMemory))
	h.Write([]byte{0x00})
	_, _ = h.Write(memory)
	h.Write([]byte{0x00})
	_, _ = h.Write(globals)
	return hex.EncodeToString(h.Sum(nil))
}

// Hash128 computes a truncated 128-bit (16 byte) SHA-256 digest over an
// arbitrary byte slice, matching the "128-bit hashing" helper service
// §6 attributes to the rewriter module. Truncating SHA-256 rather than
// using a native 128-bit hash keeps this package free of an extra
// dependency while satisfying the same contract the rewriter's own
// helper would: a short, well-distributed, non-cryptographic-strength
// fingerprint for dedup/logging purposes.
func Hash128(data []byte) [16]byte {
	sum := sha256.Sum256(data)
	var out [16]byte
	copy(out[:], sum[:16])
	return out
}
