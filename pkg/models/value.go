package models

import (
	"fmt"
	"math"
	"time"

	"github.com/fxamacker/cbor/v2"
	gojson "github.com/goccy/go-json"
)

// TypeVariant classifies which protocol type produced a decoded value.
type TypeVariant int

const (
	VariantUnknown TypeVariant = iota
	VariantNone
	VariantBool
	VariantInt
	VariantFloat
	VariantString
	VariantBytes
	VariantDecimal
	VariantDateTime
	VariantDuration
	VariantUUID
	VariantThing
	VariantTable
	VariantArray
	VariantObject
	VariantRange
	VariantPoint
	VariantLine
	VariantPolygon
	VariantMultiPoint
	VariantMultiLine
	VariantMultiPolygon
	VariantCollection
)

var variantNames = map[TypeVariant]string{
	VariantUnknown:      "unknown",
	VariantNone:         "none",
	VariantBool:         "bool",
	VariantInt:          "int",
	VariantFloat:        "float",
	VariantString:       "string",
	VariantBytes:        "bytes",
	VariantDecimal:      "decimal",
	VariantDateTime:     "datetime",
	VariantDuration:     "duration",
	VariantUUID:         "uuid",
	VariantThing:        "record",
	VariantTable:        "table",
	VariantArray:        "array",
	VariantObject:       "object",
	VariantRange:        "range",
	VariantPoint:        "point",
	VariantLine:         "line",
	VariantPolygon:      "polygon",
	VariantMultiPoint:   "multipoint",
	VariantMultiLine:    "multiline",
	VariantMultiPolygon: "multipolygon",
	VariantCollection:   "collection",
}

func (v TypeVariant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", int(v))
}

// IsGeometry reports whether the variant belongs to the geometry family.
func (v TypeVariant) IsGeometry() bool {
	switch v {
	case VariantPoint, VariantLine, VariantPolygon, VariantMultiPoint,
		VariantMultiLine, VariantMultiPolygon, VariantCollection:
		return true
	}
	return false
}

// AnyValue is a type-erased protocol value: the concrete decoded Go value
// together with the variant that produced it. Extraction via As fails
// cleanly when the requested type does not match the stored variant.
type AnyValue struct {
	inner   any
	variant TypeVariant
}

// NewAnyValue wraps an already-decoded value, classifying it.
func NewAnyValue(v any) AnyValue {
	inner, variant := classify(v)
	return AnyValue{inner: inner, variant: variant}
}

// Variant reports which protocol type this value holds.
func (v AnyValue) Variant() TypeVariant {
	return v.variant
}

// Inner returns the concrete decoded value.
func (v AnyValue) Inner() any {
	return v.inner
}

// IsNone reports whether the value is the protocol's explicit NONE.
func (v AnyValue) IsNone() bool {
	return v.variant == VariantNone
}

func (v AnyValue) String() string {
	return fmt.Sprintf("%v", v.inner)
}

// As extracts the concrete value as T. It returns the zero value and
// false when the stored value is not a T; it never panics and never
// coerces between variants.
func As[T any](v AnyValue) (T, bool) {
	if t, ok := v.inner.(T); ok {
		return t, true
	}
	var zero T
	return zero, false
}

// Decode re-encodes the stored value and unmarshals it into dst, allowing
// object values to be read into user structs.
func (v AnyValue) Decode(dst any) error {
	data, err := getCborEncoder().Marshal(v.inner)
	if err != nil {
		return fmt.Errorf("encoding value for decode: %w", err)
	}
	return getCborDecoder().Unmarshal(data, dst)
}

func (v AnyValue) MarshalCBOR() ([]byte, error) {
	return getCborEncoder().Marshal(v.inner)
}

func (v *AnyValue) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := getCborDecoder().Unmarshal(data, &raw); err != nil {
		return err
	}
	v.inner, v.variant = classify(raw)
	return nil
}

func (v AnyValue) MarshalJSON() ([]byte, error) {
	return gojson.Marshal(v.inner)
}

func (v *AnyValue) UnmarshalJSON(data []byte) error {
	var raw any
	if err := gojson.Unmarshal(data, &raw); err != nil {
		return err
	}
	v.inner, v.variant = classify(raw)
	return nil
}

// classify maps a decoded value to its variant, converting the remaining
// raw tag forms (the ones not materialized by the codec's tag set) into
// their model types. Unrecognized tags are classified by their inner
// value so new server-side tags degrade gracefully instead of erroring.
func classify(raw any) (any, TypeVariant) {
	switch val := raw.(type) {
	case nil:
		return CustomNil{}, VariantNone
	case CustomNil:
		return val, VariantNone
	case bool:
		return val, VariantBool
	case int64:
		return val, VariantInt
	case int:
		return int64(val), VariantInt
	case uint64:
		// Positive integers decode as uint64; fold them into int64 so
		// extraction sees one integer type. Values beyond int64 stay
		// uint64 rather than overflowing.
		if val <= math.MaxInt64 {
			return int64(val), VariantInt
		}
		return val, VariantInt
	case float32:
		return float64(val), VariantFloat
	case float64:
		return val, VariantFloat
	case string:
		return val, VariantString
	case []byte:
		return val, VariantBytes
	case Decimal:
		return val, VariantDecimal
	case time.Time:
		return CustomDateTime{val}, VariantDateTime
	case CustomDateTime:
		return val, VariantDateTime
	case CustomDuration:
		return val, VariantDuration
	case CustomDurationString:
		return val, VariantDuration
	case UUID:
		return val, VariantUUID
	case UUIDString:
		return val, VariantUUID
	case RecordID:
		return val, VariantThing
	case Table:
		return val, VariantTable
	case Range:
		return val, VariantRange
	case GeometryPoint:
		return val, VariantPoint
	case GeometryLine:
		return val, VariantLine
	case GeometryPolygon:
		return val, VariantPolygon
	case GeometryMultiPoint:
		return val, VariantMultiPoint
	case GeometryMultiLine:
		return val, VariantMultiLine
	case GeometryMultiPolygon:
		return val, VariantMultiPolygon
	case GeometryCollection:
		return val, VariantCollection
	case []any:
		return val, VariantArray
	case map[string]any:
		return val, VariantObject
	case cbor.Tag:
		return classifyTag(val)
	default:
		return val, VariantUnknown
	}
}

func classifyTag(tag cbor.Tag) (any, TypeVariant) {
	switch tag.Number {
	case uint64(TagRecordID):
		var r RecordID
		if err := recordIDFromTagContent(tag.Content, &r); err == nil {
			return r, VariantThing
		}
	case uint64(TagRange):
		var r Range
		if err := rangeFromTagContent(tag.Content, &r); err == nil {
			return r, VariantRange
		}
	default:
		// Forward compatibility: classify the inner value of tags this
		// client does not know about.
		return classify(tag.Content)
	}
	return tag, VariantUnknown
}
