package ir

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for a Value, for use
// anywhere a byte-stable encoding is required: content-addressed trace
// hashes and the rewriter's 128-bit hashing helper (§6).
//
// Differences from json.Marshal:
//  1. Object keys are sorted by UTF-16 code unit, not Go's UTF-8 byte
//     order.
//  2. No HTML escaping.
//  3. Strings are NFC-normalized before encoding.
//  4. Floats encode as their IEEE-754 bit pattern in hex, not decimal —
//     decimal float formatting is not guaranteed stable across Go
//     versions, which would silently break content addressing.
func MarshalCanonical(v Value) ([]byte, error) {
	return marshalCanonical(v)
}

func marshalCanonical(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case String:
		return canonicalString(string(val))
	case Int:
		return []byte(fmt.Sprintf("%d", int64(val))), nil
	case Float:
		return canonicalFloat(float64(val)), nil
	case Bool:
		if bool(val) {
			return []byte("true"), nil
		}
		return []byte("false"), nil
	case Bytes:
		return canonicalString(base64.StdEncoding.EncodeToString(val))
	case Array:
		return canonicalArray(val)
	case Object:
		return canonicalObject(val)
	default:
		return nil, fmt.Errorf("ir: unsupported type for canonical JSON: %T", v)
	}
}

// canonicalFloat encodes a float as a fixed-width hex literal of its
// IEEE-754 bit pattern, quoted as a JSON string. This sacrifices
// human-readability in traces for bit-for-bit stability across encoders,
// platforms, and Go versions — the property content addressing depends
// on.
func canonicalFloat(f float64) []byte {
	bits := math.Float64bits(f)
	return []byte(fmt.Sprintf("\"f64:%016x\"", bits))
}

func canonicalString(s string) ([]byte, error) {
	normalized := norm.NFC.String(s)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return nil, err
	}
	out := bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
	return unescapeLineSeparators(out), nil
}

// unescapeLineSeparators reverts Go's  /  escaping, which RFC
// 8785 does not require and which would otherwise make our canonical
// encoding diverge from other RFC 8785 implementations given the same
// input string.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}
	var out []byte
	for i := 0; i < len(data); {
		if i+6 <= len(data) && data[i] == '\\' && data[i+1] == 'u' &&
			data[i+2] == '2' && data[i+3] == '0' && data[i+4] == '2' &&
			(data[i+5] == '8' || data[i+5] == '9') {
			backslashes := 0
			for j := i - 1; j >= 0 && data[j] == '\\'; j-- {
				backslashes++
			}
			if backslashes%2 == 0 {
				if out == nil {
					out = append([]byte{}, data[:i]...)
				}
				if data[i+5] == '8' {
					out = append(out, " "...)
				} else {
					out = append(out, " "...)
				}
				i += 6
				continue
			}
		}
		if out != nil {
			out = append(out, data[i])
		}
		i++
	}
	if out == nil {
		return data
	}
	return out
}

func canonicalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		eb, err := marshalCanonical(elem)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", i, err)
		}
		buf.Write(eb)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func canonicalObject(obj Object) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	keys := obj.SortedKeys()
	for i, k := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := canonicalString(k)
		if err != nil {
			return nil, fmt.Errorf("key %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := marshalCanonical(obj[k])
		if err != nil {
			return nil, fmt.Errorf("value for key %q: %w", k, err)
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
