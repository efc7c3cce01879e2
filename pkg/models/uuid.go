package models

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/gofrs/uuid"
)

// UUIDString is a UUID carried in its textual form (CBOR tag 9).
type UUIDString string

// UUID is a UUID v4 or v7 value in binary form (CBOR tag 37, 16 bytes).
type UUID struct {
	uuid.UUID
}

func (u UUID) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  uint64(TagSpecBinaryUUID),
		Content: u.Bytes(),
	})
}

func (u *UUID) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != uint64(TagSpecBinaryUUID) {
		return fmt.Errorf("unexpected tag number for UUID: got %d, want %d", tag.Number, TagSpecBinaryUUID)
	}

	bytes, ok := tag.Content.([]byte)
	if !ok {
		return fmt.Errorf("UUID tag content must be a byte string, got %T", tag.Content)
	}

	if len(bytes) != 16 {
		return fmt.Errorf("UUID must be exactly 16 bytes, got %d", len(bytes))
	}

	parsed, err := uuid.FromBytes(bytes)
	if err != nil {
		return fmt.Errorf("failed to parse UUID bytes: %w", err)
	}

	u.UUID = parsed
	return nil
}

func (u UUID) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", u.UUID.String())), nil
}

func (u *UUID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' {
		return fmt.Errorf("UUID must be a JSON string, got %s", data)
	}
	parsed, err := uuid.FromString(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	u.UUID = parsed
	return nil
}
