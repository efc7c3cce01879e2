package models

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/romaninsh/surreal.go/pkg/constants"
)

// CustomDuration is a duration carried in the protocol's compact form:
// CBOR tag 14 wrapping [seconds, nanoseconds]. Nanosecond precision
// survives the round trip.
type CustomDuration time.Duration

// CustomDurationString is the protocol's textual duration form (CBOR tag
// 13), e.g. "1h30m" or "2w". The text is carried verbatim; the server owns
// its grammar.
type CustomDurationString string

func (d CustomDuration) MarshalCBOR() ([]byte, error) {
	totalNS := time.Duration(d).Nanoseconds()
	s := totalNS / constants.OneSecondToNanoSecond
	ns := totalNS % constants.OneSecondToNanoSecond

	return cbor.Marshal(cbor.Tag{
		Number:  uint64(TagCustomDuration),
		Content: [2]int64{s, ns},
	})
}

func (d *CustomDuration) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != uint64(TagCustomDuration) {
		return fmt.Errorf("unexpected tag number for duration: got %d, want %d", tag.Number, TagCustomDuration)
	}

	// The compact form may omit trailing zero elements.
	var temp []int64
	if err := cbor.Unmarshal(data, &temp); err != nil {
		return err
	}

	var s, ns int64
	if len(temp) > 0 {
		s = temp[0]
	}
	if len(temp) > 1 {
		ns = temp[1]
	}

	*d = CustomDuration(time.Duration(s)*time.Second + time.Duration(ns)*time.Nanosecond)
	return nil
}

func (d CustomDuration) String() string {
	return time.Duration(d).String()
}

// SurrealString renders the duration as a SurrealQL literal.
func (d CustomDuration) SurrealString() string {
	return d.String()
}

func (d CustomDuration) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *CustomDuration) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("duration must be a JSON string, got %s", data)
	}
	parsed, err := time.ParseDuration(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = CustomDuration(parsed)
	return nil
}

func (d CustomDurationString) String() string {
	return string(d)
}
