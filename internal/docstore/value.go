package docstore

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TimeLayout is the text form of stored dates: UTC with millisecond precision.
const TimeLayout = "2006-01-02T15:04:05.000Z"

// ToStore converts a decoded JSON value into what gets written to Mongo.
// Strings in TimeLayout become dates; json.Number keeps integer-ness.
func ToStore(v any) any {
	switch x := v.(type) {
	case string:
		if t, ok := parseTime(x); ok {
			return primitive.NewDateTimeFromTime(t)
		}
		return x
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n
		}
		f, _ := x.Float64()
		return f
	case map[string]any:
		out := make(bson.M, len(x))
		for k, e := range x {
			out[k] = ToStore(e)
		}
		return out
	case []any:
		out := make(bson.A, len(x))
		for i, e := range x {
			out[i] = ToStore(e)
		}
		return out
	default:
		return x
	}
}

// FromStore converts a value read from Mongo into plain JSON-friendly Go values.
func FromStore(v any) any {
	switch x := v.(type) {
	case primitive.DateTime:
		return x.Time().UTC().Format(TimeLayout)
	case time.Time:
		return x.UTC().Format(TimeLayout)
	case primitive.ObjectID:
		return x.Hex()
	case int32:
		return int64(x)
	case int:
		return int64(x)
	case primitive.Decimal128:
		return x.String()
	case primitive.Null, primitive.Undefined:
		return nil
	case bson.M:
		return fromMap(x)
	case map[string]any:
		return fromMap(x)
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = FromStore(e.Value)
		}
		return out
	case bson.A:
		return fromSlice(x)
	case []any:
		return fromSlice(x)
	default:
		return x
	}
}

func fromMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, e := range m {
		out[k] = FromStore(e)
	}
	return out
}

func fromSlice(s []any) []any {
	out := make([]any, len(s))
	for i, e := range s {
		out[i] = FromStore(e)
	}
	return out
}

// parseTime accepts only strings that format back to exactly the same text.
func parseTime(s string) (time.Time, bool) {
	if len(s) != len(TimeLayout) {
		return time.Time{}, false
	}
	t, err := time.Parse(TimeLayout, s)
	if err != nil || t.UTC().Format(TimeLayout) != s {
		return time.Time{}, false
	}
	return t, true
}
