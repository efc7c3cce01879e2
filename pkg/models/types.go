package models

import (
	"github.com/fxamacker/cbor/v2"
)

// Table is a table name. It encodes as CBOR tag 7 wrapping the name.
type Table string

func (t Table) String() string {
	return string(t)
}

// Decimal is an arbitrary-precision decimal carried in its exact textual
// form (CBOR tag 10). Keeping the string untouched preserves precision the
// native float types would lose.
type Decimal string

func (d Decimal) String() string {
	return string(d)
}

// CustomNil represents the protocol's explicit NONE value (CBOR tag 6),
// which is distinct from null.
type CustomNil struct{}

func (c CustomNil) MarshalCBOR() ([]byte, error) {
	return getCborEncoder().Marshal(cbor.Tag{
		Number:  uint64(TagNone),
		Content: nil,
	})
}

func (c *CustomNil) UnmarshalCBOR(data []byte) error {
	*c = CustomNil{}
	return nil
}

func (c CustomNil) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// None is the canonical NONE value.
var None = CustomNil{}
