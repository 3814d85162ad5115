package scenario

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue/cuecontext"

	"github.com/foldrun/timefold/internal/ir"
)

// ParseArgsExpr compiles a standalone CUE list expression — e.g. the
// text of a CLI --args flag — into an ir.Array using the same value
// decoding CompileOperation applies to a scenario file's args field.
// An empty or whitespace-only source parses as an empty array.
func ParseArgsExpr(source string) (ir.Array, error) {
	if strings.TrimSpace(source) == "" {
		return ir.Array{}, nil
	}

	ctx := cuecontext.New()
	v := ctx.CompileString(source)
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decoded, err := decodeValue(v)
	if err != nil {
		return nil, err
	}
	arr, ok := decoded.(ir.Array)
	if !ok {
		return nil, fmt.Errorf("scenario: args expression must be a CUE list, got %T", decoded)
	}
	return arr, nil
}
