package utility

import (
	"encoding/json"
	"strconv"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// String2ObjectID parses a hex string into an ObjectID. Invalid input
// yields the nil ObjectID.
func String2ObjectID(id string) primitive.ObjectID {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID
	}
	return objectID
}

// ObjectID2String renders an ObjectID as its hex string.
func ObjectID2String(id primitive.ObjectID) string {
	return id.Hex()
}

// P2Int64 coerces a loosely typed value (query parameter, decoded JSON
// number) to int64. Unparseable input yields 0.
func P2Int64(input interface{}) int64 {
	switch v := input.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case json.Number:
		result, err := v.Int64()
		if err != nil {
			return 0
		}
		return result
	case string:
		result, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return result
	default:
		return 0
	}
}

// P2Float64 coerces a loosely typed value to float64. Unparseable
// input yields 0.
func P2Float64(input interface{}) float64 {
	switch v := input.(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	case json.Number:
		result, err := v.Float64()
		if err != nil {
			return 0
		}
		return result
	case string:
		result, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return result
	default:
		return 0
	}
}
