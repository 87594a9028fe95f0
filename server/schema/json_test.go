package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrimitives(t *testing.T) {
	cases := map[string]DataType{
		`"boolean"`:   Boolean,
		`"integer"`:   Integer,
		`"long"`:      Long,
		`"short"`:     Short,
		`"byte"`:      Byte,
		`"float"`:     Float,
		`"double"`:    Double,
		`"string"`:    String,
		`"binary"`:    Binary,
		`"date"`:      Date,
		`"timestamp"`: Timestamp,
	}
	for wire, want := range cases {
		got, err := Parse([]byte(wire))
		require.NoError(t, err)
		assert.True(t, got.Equals(want), "parsing %s", wire)
	}
}

func TestParseUnknownPrimitiveIsInvalidSchema(t *testing.T) {
	_, err := Parse([]byte(`"vector"`))
	require.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	got, err := Parse([]byte(`"decimal(10,2)"`))
	require.NoError(t, err)
	want, err := NewDecimal(10, 2)
	require.NoError(t, err)
	assert.True(t, got.Equals(want))
}

func TestParseDecimalFallback(t *testing.T) {
	got, err := Parse([]byte(`"decimal"`))
	require.NoError(t, err)
	want, err := NewDecimal(10, 0)
	require.NoError(t, err)
	assert.True(t, got.Equals(want))
}

func TestDecimalOutOfRange(t *testing.T) {
	_, err := NewDecimal(0, 0)
	assert.Error(t, err)
	_, err = NewDecimal(39, 0)
	assert.Error(t, err)
	_, err = NewDecimal(10, 11)
	assert.Error(t, err)
}

func TestParseArrayAndMap(t *testing.T) {
	arr, err := Parse([]byte(`{"type":"array","elementType":"string","containsNull":true}`))
	require.NoError(t, err)
	a, ok := arr.(Array)
	require.True(t, ok)
	assert.True(t, a.Element.Equals(String))
	assert.True(t, a.ContainsNull)

	m, err := Parse([]byte(`{"type":"map","keyType":"string","valueType":"long","valueContainsNull":false}`))
	require.NoError(t, err)
	mm, ok := m.(Map)
	require.True(t, ok)
	assert.True(t, mm.Key.Equals(String))
	assert.True(t, mm.Value.Equals(Long))
	assert.False(t, mm.ValueContainsNull)
}

// TestStructRoundTrip is scenario S4 from spec.md: a decimal field inside
// a struct must parse and re-emit to an equivalent tree.
func TestStructRoundTrip(t *testing.T) {
	wire := []byte(`{"type":"struct","fields":[{"name":"a","type":"decimal(10,2)","nullable":true,"metadata":{}}]}`)

	parsed, err := Parse(wire)
	require.NoError(t, err)
	st, ok := parsed.(Struct)
	require.True(t, ok)
	require.Len(t, st.Fields, 1)
	assert.Equal(t, "a", st.Fields[0].Name)
	assert.True(t, st.Fields[0].Nullable)
	dec, ok := st.Fields[0].Type.(Decimal)
	require.True(t, ok)
	assert.Equal(t, 10, dec.Precision)
	assert.Equal(t, 2, dec.Scale)

	emitted, err := Emit(parsed)
	require.NoError(t, err)

	reparsed, err := Parse(emitted)
	require.NoError(t, err)
	assert.True(t, reparsed.Equals(parsed))
}

func TestStructDuplicateFieldNameRejected(t *testing.T) {
	wire := []byte(`{"type":"struct","fields":[
		{"name":"a","type":"string","nullable":true,"metadata":{}},
		{"name":"a","type":"long","nullable":false,"metadata":{}}
	]}`)
	_, err := Parse(wire)
	assert.Error(t, err)
}

func TestFieldMetadataRoundTripsExactly(t *testing.T) {
	wire := []byte(`{"type":"struct","fields":[{"name":"a","type":"string","nullable":true,"metadata":{"comment":"pii","tags":["x","y"]}}]}`)
	parsed, err := Parse(wire)
	require.NoError(t, err)

	emitted, err := Emit(parsed)
	require.NoError(t, err)

	var round map[string]interface{}
	require.NoError(t, json.Unmarshal(emitted, &round))
	fields := round["fields"].([]interface{})
	field0 := fields[0].(map[string]interface{})
	meta := field0["metadata"].(map[string]interface{})
	assert.Equal(t, "pii", meta["comment"])
}

func TestNestedArrayOfStructsRoundTrip(t *testing.T) {
	wire := []byte(`{"type":"struct","fields":[
		{"name":"events","type":{"type":"array","elementType":{"type":"struct","fields":[
			{"name":"id","type":"long","nullable":false,"metadata":{}}
		]},"containsNull":false},"nullable":false,"metadata":{}}
	]}`)
	parsed, err := Parse(wire)
	require.NoError(t, err)
	emitted, err := Emit(parsed)
	require.NoError(t, err)
	reparsed, err := Parse(emitted)
	require.NoError(t, err)
	assert.True(t, reparsed.Equals(parsed))
}

func TestFieldByName(t *testing.T) {
	st, err := NewStruct([]Field{
		{Name: "a", Type: String, Metadata: emptyMetadata},
		{Name: "b", Type: Long, Metadata: emptyMetadata},
	})
	require.NoError(t, err)

	f, ok := st.FieldByName("b")
	require.True(t, ok)
	assert.True(t, f.Type.Equals(Long))

	_, ok = st.FieldByName("missing")
	assert.False(t, ok)
}
