package accessor

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/structdb/internal/schema"
)

// Coerce converts a decoded JSON value into the Go type stored for tc:
//
//	String, Enum  string
//	Integer       int64
//	Fractal       float64
//	DateTime      time.Time (UTC)
//	Bool          bool
//	Guid          uuid.UUID
//	Other         unchanged
func Coerce(tc schema.TypeClass, v any) (any, error) {
	switch tc {
	case schema.TypeClassString, schema.TypeClassEnum:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case schema.TypeClassInteger:
		return toInt64(v)
	case schema.TypeClassFractal:
		return toFloat64(v)
	case schema.TypeClassDateTime:
		switch t := v.(type) {
		case time.Time:
			return t.UTC(), nil
		case string:
			parsed, err := time.Parse(time.RFC3339Nano, t)
			if err != nil {
				return nil, fmt.Errorf("datetime: %w", err)
			}
			return parsed.UTC(), nil
		}
	case schema.TypeClassBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case schema.TypeClassGuid:
		switch g := v.(type) {
		case uuid.UUID:
			return g, nil
		case string:
			parsed, err := uuid.Parse(g)
			if err != nil {
				return nil, fmt.Errorf("guid: %w", err)
			}
			return parsed, nil
		}
	default:
		return v, nil
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, tc)
}

func toInt64(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("integer: %w", err)
		}
		return i, nil
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("integer: %v has a fractional part", n)
		}
		return int64(n), nil
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

func toFloat64(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("fractal: %w", err)
		}
		return f, nil
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return nil, fmt.Errorf("cannot use %T as fractal", v)
}
