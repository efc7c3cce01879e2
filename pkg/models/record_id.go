package models

import (
	"fmt"
	"strings"

	"github.com/fxamacker/cbor/v2"
)

// RecordID identifies a single record as a table name plus an intra-table
// id. It encodes as CBOR tag 8 wrapping the two-element array
// [table, id]. Equality is structural: two RecordIDs are equal iff both
// components match exactly, with no normalization.
type RecordID struct {
	Table string
	ID    string
}

func NewRecordID(table, id string) RecordID {
	return RecordID{Table: table, ID: id}
}

// ParseRecordID parses the textual "table:id" form. The id part may itself
// contain colons; only the first one separates the table.
func ParseRecordID(s string) (RecordID, error) {
	table, id, found := strings.Cut(s, ":")
	if !found || table == "" || id == "" {
		return RecordID{}, fmt.Errorf("invalid record id %q: expected format is 'table:identifier'", s)
	}
	return RecordID{Table: table, ID: id}, nil
}

func (r RecordID) MarshalCBOR() ([]byte, error) {
	return getCborEncoder().Marshal(cbor.Tag{
		Number:  uint64(TagRecordID),
		Content: []any{r.Table, r.ID},
	})
}

func (r *RecordID) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := getCborDecoder().Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != uint64(TagRecordID) {
		return fmt.Errorf("unexpected tag number for record id: got %d, want %d", tag.Number, TagRecordID)
	}

	return recordIDFromTagContent(tag.Content, r)
}

func recordIDFromTagContent(content any, r *RecordID) error {
	parts, ok := content.([]any)
	if !ok || len(parts) != 2 {
		return fmt.Errorf("record id content must be a [table, id] pair, got %T", content)
	}

	table, ok := parts[0].(string)
	if !ok {
		return fmt.Errorf("record id table must be a string, got %T", parts[0])
	}

	// Ids are free-form server-side; anything non-textual is rendered
	// through its default formatting.
	id, ok := parts[1].(string)
	if !ok {
		id = fmt.Sprintf("%v", parts[1])
	}

	r.Table = table
	r.ID = id
	return nil
}

// String renders the textual "table:id" form used for display and for
// embedding in query templates.
func (r RecordID) String() string {
	return fmt.Sprintf("%s:%s", r.Table, r.ID)
}

// SurrealString renders the record id as a SurrealQL record literal.
func (r RecordID) SurrealString() string {
	return fmt.Sprintf("r'%s'", r.String())
}

func (r RecordID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", r.String())), nil
}

func (r *RecordID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("record id must be a JSON string, got %s", data)
	}
	parsed, err := ParseRecordID(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
