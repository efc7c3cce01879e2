package models

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// RangeBound is one end of a Range. Inclusive bounds encode as CBOR tag
// 50, exclusive bounds as tag 51, each wrapping the bound value.
type RangeBound struct {
	Value     any
	Inclusive bool
}

// Range is an interval between two optional bounds (CBOR tag 49 wrapping
// [begin, end]; a missing bound encodes as null).
type Range struct {
	Begin *RangeBound
	End   *RangeBound
}

func (b RangeBound) tag() uint64 {
	if b.Inclusive {
		return uint64(TagBoundIncluded)
	}
	return uint64(TagBoundExcluded)
}

func (r Range) MarshalCBOR() ([]byte, error) {
	content := make([]any, 2)
	for i, b := range []*RangeBound{r.Begin, r.End} {
		if b == nil {
			continue
		}
		content[i] = cbor.Tag{Number: b.tag(), Content: b.Value}
	}

	return getCborEncoder().Marshal(cbor.Tag{
		Number:  uint64(TagRange),
		Content: content,
	})
}

func (r *Range) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := getCborDecoder().Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != uint64(TagRange) {
		return fmt.Errorf("unexpected tag number for range: got %d, want %d", tag.Number, TagRange)
	}

	return rangeFromTagContent(tag.Content, r)
}

func rangeFromTagContent(content any, r *Range) error {
	parts, ok := content.([]any)
	if !ok || len(parts) != 2 {
		return fmt.Errorf("range content must be a [begin, end] pair, got %T", content)
	}

	begin, err := rangeBoundFromContent(parts[0])
	if err != nil {
		return err
	}
	end, err := rangeBoundFromContent(parts[1])
	if err != nil {
		return err
	}

	r.Begin = begin
	r.End = end
	return nil
}

func rangeBoundFromContent(content any) (*RangeBound, error) {
	if content == nil {
		return nil, nil
	}

	tag, ok := content.(cbor.Tag)
	if !ok {
		return nil, fmt.Errorf("range bound must be a tagged value, got %T", content)
	}

	switch tag.Number {
	case uint64(TagBoundIncluded):
		return &RangeBound{Value: tag.Content, Inclusive: true}, nil
	case uint64(TagBoundExcluded):
		return &RangeBound{Value: tag.Content, Inclusive: false}, nil
	default:
		return nil, fmt.Errorf("unexpected tag number for range bound: got %d", tag.Number)
	}
}

// String renders the range in SurrealQL syntax, e.g. "1..=10" or "a>..b".
func (r Range) String() string {
	var sb strings.Builder
	if r.Begin != nil {
		fmt.Fprintf(&sb, "%v", r.Begin.Value)
		if !r.Begin.Inclusive {
			sb.WriteString(">")
		}
	}
	sb.WriteString("..")
	if r.End != nil {
		if r.End.Inclusive {
			sb.WriteString("=")
		}
		fmt.Fprintf(&sb, "%v", r.End.Value)
	}
	return sb.String()
}
