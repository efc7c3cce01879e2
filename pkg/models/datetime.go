package models

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/romaninsh/surreal.go/pkg/constants"
)

// CustomDateTime embeds time.Time and encodes as the protocol's compact
// datetime form: CBOR tag 12 wrapping [seconds, nanoseconds]. Sub-second
// precision survives the round trip. The RFC3339 text form (tag 0) is
// accepted on decode through the codec's time handling.
type CustomDateTime struct {
	time.Time
}

func (d CustomDateTime) MarshalCBOR() ([]byte, error) {
	totalNS := d.UnixNano()

	s := totalNS / constants.OneSecondToNanoSecond
	ns := totalNS % constants.OneSecondToNanoSecond

	return cbor.Marshal(cbor.Tag{
		Number:  uint64(TagCustomDatetime),
		Content: [2]int64{s, ns},
	})
}

func (d *CustomDateTime) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	switch tag.Number {
	case uint64(TagCustomDatetime):
		var temp [2]int64
		if err := cbor.Unmarshal(data, &temp); err != nil {
			return err
		}
		*d = CustomDateTime{time.Unix(temp[0], temp[1]).UTC()}
		return nil
	case uint64(TagDateTimeRFC3339):
		text, ok := tag.Content.(string)
		if !ok {
			return fmt.Errorf("datetime tag 0 content must be text, got %T", tag.Content)
		}
		parsed, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return err
		}
		*d = CustomDateTime{parsed}
		return nil
	default:
		return fmt.Errorf("unexpected tag number for datetime: got %d, want %d or %d",
			tag.Number, TagCustomDatetime, TagDateTimeRFC3339)
	}
}

func (d CustomDateTime) String() string {
	return d.UTC().Format(time.RFC3339Nano)
}

// SurrealString renders the datetime as a SurrealQL literal.
func (d CustomDateTime) SurrealString() string {
	return fmt.Sprintf("d'%s'", d.String())
}

func (d CustomDateTime) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", d.String())), nil
}

func (d *CustomDateTime) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("datetime must be a JSON string, got %s", data)
	}
	parsed, err := time.Parse(time.RFC3339Nano, string(data[1:len(data)-1]))
	if err != nil {
		return err
	}
	*d = CustomDateTime{parsed}
	return nil
}
