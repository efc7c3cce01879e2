package models

import (
	"testing"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in any) AnyValue {
	t.Helper()

	data, err := CborCodec{}.Marshal(in)
	require.NoError(t, err)

	var out AnyValue
	require.NoError(t, CborCodec{}.Unmarshal(data, &out))
	return out
}

func TestRoundTrip_Primitives(t *testing.T) {
	v := roundTrip(t, true)
	assert.Equal(t, VariantBool, v.Variant())
	b, ok := As[bool](v)
	require.True(t, ok)
	assert.True(t, b)

	v = roundTrip(t, int64(42))
	assert.Equal(t, VariantInt, v.Variant())

	v = roundTrip(t, 3.25)
	assert.Equal(t, VariantFloat, v.Variant())
	f, ok := As[float64](v)
	require.True(t, ok)
	assert.Equal(t, 3.25, f)

	v = roundTrip(t, "hello")
	assert.Equal(t, VariantString, v.Variant())

	v = roundTrip(t, []byte{0x01, 0x02})
	assert.Equal(t, VariantBytes, v.Variant())
}

func TestRoundTrip_None(t *testing.T) {
	v := roundTrip(t, None)
	assert.Equal(t, VariantNone, v.Variant())
	assert.True(t, v.IsNone())
}

func TestRoundTrip_Table(t *testing.T) {
	v := roundTrip(t, Table("person"))
	assert.Equal(t, VariantTable, v.Variant())

	table, ok := As[Table](v)
	require.True(t, ok)
	assert.Equal(t, Table("person"), table)
}

func TestRoundTrip_DecimalKeepsPrecision(t *testing.T) {
	// More digits than float64 can represent.
	in := Decimal("1234567890.123456789012345678")

	v := roundTrip(t, in)
	assert.Equal(t, VariantDecimal, v.Variant())

	d, ok := As[Decimal](v)
	require.True(t, ok)
	assert.Equal(t, in, d)
}

func TestRoundTrip_DateTimeKeepsNanoseconds(t *testing.T) {
	in := CustomDateTime{time.Date(2024, 5, 17, 9, 30, 15, 123456789, time.UTC)}

	v := roundTrip(t, in)
	assert.Equal(t, VariantDateTime, v.Variant())

	d, ok := As[CustomDateTime](v)
	require.True(t, ok)
	assert.True(t, in.Equal(d.Time), "expected %s, got %s", in, d)
	assert.Equal(t, 123456789, d.Nanosecond())
}

func TestRoundTrip_DurationKeepsNanoseconds(t *testing.T) {
	in := CustomDuration(90*time.Minute + 3*time.Nanosecond)

	v := roundTrip(t, in)
	assert.Equal(t, VariantDuration, v.Variant())

	d, ok := As[CustomDuration](v)
	require.True(t, ok)
	assert.Equal(t, in, d)
}

func TestRoundTrip_DurationString(t *testing.T) {
	v := roundTrip(t, CustomDurationString("1h30m"))
	assert.Equal(t, VariantDuration, v.Variant())

	d, ok := As[CustomDurationString](v)
	require.True(t, ok)
	assert.Equal(t, "1h30m", d.String())
}

func TestRoundTrip_UUID(t *testing.T) {
	id, err := uuid.NewV4()
	require.NoError(t, err)

	v := roundTrip(t, UUID{id})
	assert.Equal(t, VariantUUID, v.Variant())

	u, ok := As[UUID](v)
	require.True(t, ok)
	assert.Equal(t, id.String(), u.String())

	v = roundTrip(t, UUIDString("9f0c3d61-4f33-4c9f-9ea5-3c2c6e2f14b0"))
	assert.Equal(t, VariantUUID, v.Variant())
}

func TestRoundTrip_RecordID(t *testing.T) {
	in := NewRecordID("bakery", "hill_valley")

	// The wire form must be tag 8 wrapping [table, id].
	data, err := CborCodec{}.Marshal(in)
	require.NoError(t, err)

	var raw cbor.RawTag
	require.NoError(t, cbor.Unmarshal(data, &raw))
	assert.Equal(t, uint64(TagRecordID), raw.Number)

	var out AnyValue
	require.NoError(t, CborCodec{}.Unmarshal(data, &out))
	assert.Equal(t, VariantThing, out.Variant())

	r, ok := As[RecordID](out)
	require.True(t, ok)
	assert.Equal(t, in, r)
	assert.Equal(t, "bakery:hill_valley", r.String())
}

func TestRoundTrip_Range(t *testing.T) {
	in := Range{
		Begin: &RangeBound{Value: int64(1), Inclusive: true},
		End:   &RangeBound{Value: int64(10), Inclusive: false},
	}

	v := roundTrip(t, in)
	assert.Equal(t, VariantRange, v.Variant())

	r, ok := As[Range](v)
	require.True(t, ok)
	require.NotNil(t, r.Begin)
	require.NotNil(t, r.End)
	assert.True(t, r.Begin.Inclusive)
	assert.False(t, r.End.Inclusive)
	assert.Equal(t, "1..10", r.String())
}

func TestRoundTrip_Geometry(t *testing.T) {
	point := NewGeometryPoint(-73.9857, 40.7484)

	v := roundTrip(t, point)
	assert.Equal(t, VariantPoint, v.Variant())

	p, ok := As[GeometryPoint](v)
	require.True(t, ok)
	assert.Equal(t, point, p)

	line := GeometryLine{NewGeometryPoint(0, 0), NewGeometryPoint(1, 1)}
	v = roundTrip(t, line)
	assert.Equal(t, VariantLine, v.Variant())
}

func TestRoundTrip_Compound(t *testing.T) {
	v := roundTrip(t, []any{int64(1), "two", true})
	assert.Equal(t, VariantArray, v.Variant())

	arr, ok := As[[]any](v)
	require.True(t, ok)
	assert.Len(t, arr, 3)

	v = roundTrip(t, map[string]any{"name": "doc", "age": int64(42)})
	assert.Equal(t, VariantObject, v.Variant())

	obj, ok := As[map[string]any](v)
	require.True(t, ok)
	assert.Equal(t, "doc", obj["name"])
}

func TestAs_WrongTypeFailsCleanly(t *testing.T) {
	v := roundTrip(t, int64(42))

	s, ok := As[string](v)
	assert.False(t, ok)
	assert.Empty(t, s)

	r, ok := As[RecordID](v)
	assert.False(t, ok)
	assert.Zero(t, r)

	// The value itself stays intact after failed extractions.
	n, ok := As[int64](v)
	require.True(t, ok)
	assert.Equal(t, int64(42), n)
}

func TestUnknownTagClassifiesInnerValue(t *testing.T) {
	data, err := cbor.Marshal(cbor.Tag{Number: 4242, Content: "future-type"})
	require.NoError(t, err)

	var v AnyValue
	require.NoError(t, CborCodec{}.Unmarshal(data, &v))

	assert.Equal(t, VariantString, v.Variant())
	s, ok := As[string](v)
	require.True(t, ok)
	assert.Equal(t, "future-type", s)
}

func TestUnknownTagNestedContent(t *testing.T) {
	data, err := cbor.Marshal(cbor.Tag{
		Number:  4242,
		Content: cbor.Tag{Number: 4243, Content: int64(7)},
	})
	require.NoError(t, err)

	var v AnyValue
	require.NoError(t, CborCodec{}.Unmarshal(data, &v))
	assert.Equal(t, VariantInt, v.Variant())
}

func TestAnyValue_StableReencode(t *testing.T) {
	first := roundTrip(t, NewRecordID("person", "tobie"))

	data, err := CborCodec{}.Marshal(first)
	require.NoError(t, err)

	var second AnyValue
	require.NoError(t, CborCodec{}.Unmarshal(data, &second))

	assert.Equal(t, first.Variant(), second.Variant())
	assert.Equal(t, first.Inner(), second.Inner())
}

func TestAnyValue_DecodeIntoStruct(t *testing.T) {
	type person struct {
		Name string   `cbor:"name"`
		ID   RecordID `cbor:"id"`
	}

	v := roundTrip(t, map[string]any{
		"name": "tobie",
		"id":   NewRecordID("person", "tobie"),
	})
	require.Equal(t, VariantObject, v.Variant())

	var p person
	require.NoError(t, v.Decode(&p))
	assert.Equal(t, "tobie", p.Name)
	assert.Equal(t, "person:tobie", p.ID.String())
}

func TestParseRecordID(t *testing.T) {
	r, err := ParseRecordID("person:tobie")
	require.NoError(t, err)
	assert.Equal(t, RecordID{Table: "person", ID: "tobie"}, r)

	// Only the first colon splits; the rest belongs to the id.
	r, err = ParseRecordID("person:a:b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", r.ID)

	_, err = ParseRecordID("no-colon")
	assert.Error(t, err)

	_, err = ParseRecordID("person:")
	assert.Error(t, err)

	_, err = ParseRecordID(":id")
	assert.Error(t, err)
}
