package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord_ReservedFields(t *testing.T) {
	r := NewRecord("dump.txt", "  alice:pw  ")

	assert.Equal(t, "dump.txt", r.Source())
	assert.Equal(t, "  alice:pw  ", r.Raw())
	assert.Equal(t, []string{FieldSource, FieldRaw}, r.Keys())
	assert.Equal(t, 2, r.Len())
}

func TestRecord_SetIfAbsent_FirstWins(t *testing.T) {
	r := NewRecord("s", "raw")

	assert.True(t, r.SetIfAbsent(FieldEmail, "a@b.co"))
	assert.False(t, r.SetIfAbsent(FieldEmail, "c@d.co"))

	v, ok := r.Get(FieldEmail)
	require.True(t, ok)
	assert.Equal(t, "a@b.co", v)
}

func TestRecord_ZeroValue(t *testing.T) {
	var r Record

	assert.False(t, r.Has(FieldRaw))
	assert.Equal(t, 0, r.Len())
	assert.True(t, r.SetIfAbsent("x", "y"))
	assert.True(t, r.Has("x"))
}

func TestRecord_MarshalJSON_PreservesOrder(t *testing.T) {
	r := NewRecord("s", "raw")
	r.SetIfAbsent(FieldPassword, "p")
	r.SetIfAbsent(FieldEmail, "e@x.io")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	assert.Equal(t, `{"_source":"s","_raw":"raw","password":"p","email":"e@x.io"}`, string(data))
}

func TestRecord_MarshalJSON_EscapesValues(t *testing.T) {
	r := NewRecord("s", "a\"b\tc")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back map[string]string
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "a\"b\tc", back[FieldRaw])
}

func TestRecord_UnmarshalJSON(t *testing.T) {
	var r Record
	err := json.Unmarshal([]byte(`{"_source":"s","_raw":"line","email":"a@b.co","count":3}`), &r)
	require.NoError(t, err)

	assert.Equal(t, []string{"_source", "_raw", "email", "count"}, r.Keys())
	assert.Equal(t, "line", r.Raw())
	v, _ := r.Get("count")
	assert.Equal(t, "3", v)
}

func TestRecord_UnmarshalJSON_RejectsNonObject(t *testing.T) {
	var r Record
	assert.Error(t, json.Unmarshal([]byte(`["a"]`), &r))
}
