package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_SortedKeys(t *testing.T) {
	obj := Object{"z": Int(1), "a": Int(2), "m": Int(3)}
	assert.Equal(t, []string{"a", "m", "z"}, obj.SortedKeys())
}

func TestObject_MarshalJSON_SortsKeys(t *testing.T) {
	obj := Object{"b": Int(2), "a": Int(1)}
	out, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":1,"b":2}`, string(out))
}

func TestMarshalValue_Bytes(t *testing.T) {
	out, err := MarshalValue(Bytes{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, `"AQID"`, string(out))
}

func TestNewObject(t *testing.T) {
	obj := NewObject(P("x", Int(1)), P("y", Bool(true)))
	assert.Equal(t, Int(1), obj["x"])
	assert.Equal(t, Bool(true), obj["y"])
}
