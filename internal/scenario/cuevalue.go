package scenario

import (
	"fmt"

	"cuelang.org/go/cue"

	"github.com/foldrun/timefold/internal/ir"
)

// decodeValue converts a concrete CUE value into an ir.Value, recursing
// into lists and structs. It rejects incomplete (non-concrete) values —
// a scenario script's argument values must be fully resolved at compile
// time, since the engine has no notion of a CUE constraint to defer.
func decodeValue(v cue.Value) (ir.Value, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.Kind() {
	case cue.NullKind:
		return ir.Null{}, nil
	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bool(b), nil
	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Int(i), nil
	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Float(f), nil
	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.String(s), nil
	case cue.BytesKind:
		b, err := v.Bytes()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return ir.Bytes(b), nil
	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		arr := ir.Array{}
		for iter.Next() {
			elem, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			arr = append(arr, elem)
		}
		return arr, nil
	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, formatCUEError(err)
		}
		obj := ir.Object{}
		for iter.Next() {
			val, err := decodeValue(iter.Value())
			if err != nil {
				return nil, err
			}
			obj[iter.Label()] = val
		}
		return obj, nil
	default:
		return nil, &CompileError{
			Field:   "args",
			Message: fmt.Sprintf("unsupported or non-concrete CUE value of kind %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}
