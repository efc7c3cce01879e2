package models

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// GeometryPoint is a single coordinate pair (CBOR tag 88 wrapping
// [longitude, latitude], per GeoJSON ordering).
type GeometryPoint struct {
	Longitude float64
	Latitude  float64
}

func NewGeometryPoint(longitude, latitude float64) GeometryPoint {
	return GeometryPoint{Longitude: longitude, Latitude: latitude}
}

func (gp GeometryPoint) GetCoordinates() [2]float64 {
	return [2]float64{gp.Longitude, gp.Latitude}
}

func (gp GeometryPoint) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(cbor.Tag{
		Number:  uint64(TagGeometryPoint),
		Content: gp.GetCoordinates(),
	})
}

func (gp *GeometryPoint) UnmarshalCBOR(data []byte) error {
	var tag cbor.Tag
	if err := cbor.Unmarshal(data, &tag); err != nil {
		return err
	}

	if tag.Number != uint64(TagGeometryPoint) {
		return fmt.Errorf("unexpected tag number for geometry point: got %d, want %d", tag.Number, TagGeometryPoint)
	}

	content, ok := tag.Content.([]any)
	if !ok || len(content) != 2 {
		return fmt.Errorf("geometry point content must be [longitude, latitude], got %T", tag.Content)
	}

	lon, ok := content[0].(float64)
	if !ok {
		return fmt.Errorf("unexpected type for longitude: got %T, want float64", content[0])
	}

	lat, ok := content[1].(float64)
	if !ok {
		return fmt.Errorf("unexpected type for latitude: got %T, want float64", content[1])
	}

	gp.Longitude = lon
	gp.Latitude = lat
	return nil
}

// GeometryLine is an ordered list of points (tag 89).
type GeometryLine []GeometryPoint

// GeometryPolygon is a list of closed lines (tag 90); the first line is
// the exterior ring.
type GeometryPolygon []GeometryLine

// GeometryMultiPoint is an unordered set of points (tag 91).
type GeometryMultiPoint []GeometryPoint

// GeometryMultiLine is a set of lines (tag 92).
type GeometryMultiLine []GeometryLine

// GeometryMultiPolygon is a set of polygons (tag 93).
type GeometryMultiPolygon []GeometryPolygon

// GeometryCollection holds a heterogeneous set of geometry values
// (tag 94).
type GeometryCollection []any
