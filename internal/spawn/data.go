package spawn

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"

	"github.com/udisondev/spreadspawn/internal/model"
)

// Data is the structured, generator-specific configuration/state blob.
// Keys are generator defined. Persisted as a JSON object.
type Data map[string]any

// Clone returns a shallow copy.
func (d Data) Clone() Data {
	if d == nil {
		return Data{}
	}
	return maps.Clone(d)
}

// MarshalData encodes data as JSON.
func MarshalData(d Data) ([]byte, error) {
	if d == nil {
		d = Data{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encoding generator data: %w", err)
	}
	return b, nil
}

// UnmarshalData decodes a JSON object. Numbers are kept as json.Number so
// 64-bit seeds survive the round trip.
func UnmarshalData(b []byte) (Data, error) {
	d := Data{}
	if len(bytes.TrimSpace(b)) == 0 {
		return d, nil
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decoding generator data: %w", err)
	}
	return d, nil
}

// int64Field returns the integer at key. ok is false when the key is absent.
// Accepts Go integers, integral floats and json.Number.
func int64Field(d Data, key string) (v int64, ok bool, err error) {
	raw, ok := d[key]
	if !ok {
		return 0, false, nil
	}
	v, err = toInt64(raw)
	if err != nil {
		return 0, true, &ConfigError{Key: key, Value: raw, Reason: err.Error()}
	}
	return v, true, nil
}

// int32Field is int64Field limited to the int32 range.
func int32Field(d Data, key string) (int32, bool, error) {
	v, ok, err := int64Field(d, key)
	if err != nil || !ok {
		return 0, ok, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, true, &ConfigError{Key: key, Value: v, Reason: "out of int32 range"}
	}
	return int32(v), true, nil
}

func stringField(d Data, key string) (string, bool, error) {
	raw, ok := d[key]
	if !ok {
		return "", false, nil
	}
	s, isString := raw.(string)
	if !isString {
		return "", true, &ConfigError{Key: key, Value: raw, Reason: "expected string"}
	}
	return s, true, nil
}

// pointsField reads a list of [x, z] pairs.
func pointsField(d Data, key string) ([]model.Coordinate, bool, error) {
	raw, ok := d[key]
	if !ok {
		return nil, false, nil
	}

	var pairs [][2]any
	switch list := raw.(type) {
	case [][]int32:
		for _, p := range list {
			if len(p) != 2 {
				return nil, true, &ConfigError{Key: key, Value: p, Reason: "expected [x, z] pair"}
			}
			pairs = append(pairs, [2]any{p[0], p[1]})
		}
	case []any:
		for _, item := range list {
			p, isList := item.([]any)
			if !isList || len(p) != 2 {
				return nil, true, &ConfigError{Key: key, Value: item, Reason: "expected [x, z] pair"}
			}
			pairs = append(pairs, [2]any{p[0], p[1]})
		}
	default:
		return nil, true, &ConfigError{Key: key, Value: raw, Reason: "expected list of [x, z] pairs"}
	}

	points := make([]model.Coordinate, 0, len(pairs))
	for _, p := range pairs {
		x, errX := toInt64(p[0])
		z, errZ := toInt64(p[1])
		if errX != nil || errZ != nil ||
			x < math.MinInt32 || x > math.MaxInt32 || z < math.MinInt32 || z > math.MaxInt32 {
			return nil, true, &ConfigError{Key: key, Value: p, Reason: "coordinates must be int32"}
		}
		points = append(points, model.NewCoordinate(int32(x), int32(z)))
	}
	return points, true, nil
}

func encodePoints(points []model.Coordinate) [][]int32 {
	out := make([][]int32, 0, len(points))
	for _, p := range points {
		out = append(out, []int32{p.X, p.Z})
	}
	return out
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case uint8:
		return int64(v), nil
	case uint16:
		return int64(v), nil
	case uint32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return 0, fmt.Errorf("out of int64 range")
		}
		return int64(v), nil
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, fmt.Errorf("out of int64 range")
		}
		return int64(v), nil
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		f, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		return floatToInt64(f)
	default:
		return 0, fmt.Errorf("expected integer, got %T", raw)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("expected integer, got %v", f)
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, fmt.Errorf("out of int64 range")
	}
	return int64(f), nil
}
