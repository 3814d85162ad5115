package cli

import (
	"sync"

	"github.com/google/uuid"
)

// TraceIDGenerator produces the trace ID tagging a single CLI
// invocation's diagnostic output.
type TraceIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 trace IDs, so the IDs
// tagging successive CLI invocations' log lines sort in invocation order.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7, falling back to a UUIDv4 on the rare
// entropy-source failure rather than propagating an error into every
// command's happy path.
func (UUIDv7Generator) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// FixedGenerator returns predetermined trace IDs in order, for
// deterministic assertions against --format json output in tests.
type FixedGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedGenerator creates a generator that returns tokens in order.
func NewFixedGenerator(tokens ...string) *FixedGenerator {
	return &FixedGenerator{tokens: tokens}
}

// Generate returns the next predetermined token, panicking once
// exhausted to catch a test issuing more invocations than it stubbed.
func (g *FixedGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.idx >= len(g.tokens) {
		panic("cli: FixedGenerator exhausted")
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}

// traceIDGen is the process-wide trace ID source. Assigning a
// FixedGenerator here makes the trace IDs predictable.
var traceIDGen TraceIDGenerator = UUIDv7Generator{}
