package models

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/fxamacker/cbor/v2"

	"github.com/romaninsh/surreal.go/internal/codec"
	"github.com/romaninsh/surreal.go/pkg/constants"
)

func registerCborTags() cbor.TagSet {
	customTags := map[CustomCBORTag]any{
		TagGeometryPoint:        GeometryPoint{},
		TagGeometryLine:         GeometryLine{},
		TagGeometryPolygon:      GeometryPolygon{},
		TagGeometryMultiPoint:   GeometryMultiPoint{},
		TagGeometryMultiLine:    GeometryMultiLine{},
		TagGeometryMultiPolygon: GeometryMultiPolygon{},
		TagGeometryCollection:   GeometryCollection{},

		TagTableName:      Table(""),
		TagDecimalString:  Decimal(""),
		TagUUIDString:     UUIDString(""),
		TagSpecBinaryUUID: UUID{},
		TagNone:           CustomNil{},

		TagCustomDatetime: CustomDateTime{},
		TagDurationString: CustomDurationString("1w"),
		TagCustomDuration: CustomDuration(0),
	}

	tags := cbor.NewTagSet()
	for tag, customType := range customTags {
		err := tags.Add(
			cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
			reflect.TypeOf(customType),
			uint64(tag),
		)
		if err != nil {
			panic(err)
		}
	}

	return tags
}

var (
	cborEncOnce sync.Once
	cborEncMode cbor.EncMode

	cborDecOnce sync.Once
	cborDecMode cbor.DecMode
)

func getCborEncoder() cbor.EncMode {
	cborEncOnce.Do(func() {
		tags := registerCborTags()
		em, err := cbor.EncOptions{
			Time:    cbor.TimeRFC3339Nano,
			TimeTag: cbor.EncTagRequired,
		}.EncModeWithTags(tags)
		if err != nil {
			panic(err)
		}
		cborEncMode = em
	})
	return cborEncMode
}

func getCborDecoder() cbor.DecMode {
	cborDecOnce.Do(func() {
		tags := registerCborTags()
		dm, err := cbor.DecOptions{
			TimeTagToAny:   cbor.TimeTagToTime,
			DefaultMapType: reflect.TypeOf(map[string]any{}),
		}.DecModeWithTags(tags)
		if err != nil {
			panic(err)
		}
		cborDecMode = dm
	})
	return cborDecMode
}

// CborCodec is the default wire codec. It marshals with the SurrealDB
// custom tag set and splits inbound frames without fully decoding the
// result payload.
type CborCodec struct{}

func (CborCodec) Marshal(v any) ([]byte, error) {
	return getCborEncoder().Marshal(v)
}

func (CborCodec) Unmarshal(data []byte, dst any) error {
	return getCborDecoder().Unmarshal(data, dst)
}

type cborEnvelope struct {
	ID     *uint64         `cbor:"id"`
	Result cbor.RawMessage `cbor:"result"`
	Error  *codec.RPCError `cbor:"error"`
}

func (CborCodec) DecodeResponse(data []byte) (*codec.ResponseEnvelope, error) {
	var env cborEnvelope
	if err := getCborDecoder().Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", constants.ErrInvalidResponse, err)
	}

	res := &codec.ResponseEnvelope{
		Result: env.Result,
		Error:  env.Error,
	}
	if env.ID != nil {
		res.ID = *env.ID
		res.HasID = true
	}
	return res, nil
}

func (CborCodec) Binary() bool { return true }

func (CborCodec) Subprotocol() string { return "cbor" }

var _ codec.Codec = CborCodec{}
