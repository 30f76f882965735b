package utils

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Serializable converts a database-native document tree into a plain,
// JSON-safe one: object identifiers become hex strings, date values become
// RFC 3339 strings, sequences and keyed structures recurse, primitive leaves
// pass through. Applying it to an already-plain structure is a no-op.
func Serializable(v interface{}) interface{} {
	switch value := v.(type) {
	case nil:
		return nil
	case primitive.ObjectID:
		return value.Hex()
	case primitive.DateTime:
		return value.Time().UTC().Format(time.RFC3339)
	case time.Time:
		return value.UTC().Format(time.RFC3339)
	case primitive.A:
		return serializeSlice(value)
	case []interface{}:
		return serializeSlice(value)
	case []bson.M:
		out := make([]interface{}, len(value))
		for i, item := range value {
			out[i] = Serializable(item)
		}
		return out
	case bson.M:
		return serializeMap(value)
	case map[string]interface{}:
		return serializeMap(value)
	case bson.D:
		out := make(map[string]interface{}, len(value))
		for _, element := range value {
			out[element.Key] = Serializable(element.Value)
		}
		return out
	default:
		return value
	}
}

func serializeSlice(items []interface{}) []interface{} {
	out := make([]interface{}, len(items))
	for i, item := range items {
		out[i] = Serializable(item)
	}
	return out
}

func serializeMap(doc map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for key, value := range doc {
		out[key] = Serializable(value)
	}
	return out
}
