package models

// CustomCBORTag is a CBOR tag number used by the SurrealDB wire protocol.
//
// The full tag table is documented at
// https://surrealdb.com/docs/surrealdb/integration/cbor and must stay
// bit-exact for interoperability.
type CustomCBORTag uint64

const (
	TagDateTimeRFC3339 CustomCBORTag = 0
	TagNone            CustomCBORTag = 6
	TagTableName       CustomCBORTag = 7
	TagRecordID        CustomCBORTag = 8
	TagUUIDString      CustomCBORTag = 9
	TagDecimalString   CustomCBORTag = 10
	TagCustomDatetime  CustomCBORTag = 12
	TagDurationString  CustomCBORTag = 13
	TagCustomDuration  CustomCBORTag = 14
	TagSpecBinaryUUID  CustomCBORTag = 37
	TagRange           CustomCBORTag = 49
	TagBoundIncluded   CustomCBORTag = 50
	TagBoundExcluded   CustomCBORTag = 51

	TagGeometryPoint        CustomCBORTag = 88
	TagGeometryLine         CustomCBORTag = 89
	TagGeometryPolygon      CustomCBORTag = 90
	TagGeometryMultiPoint   CustomCBORTag = 91
	TagGeometryMultiLine    CustomCBORTag = 92
	TagGeometryMultiPolygon CustomCBORTag = 93
	TagGeometryCollection   CustomCBORTag = 94
)
