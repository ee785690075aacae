package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// DateTimeLayout is the canonical text form of DateTime values. It sorts
// lexically in chronological order for UTC instants.
const DateTimeLayout = "2006-01-02T15:04:05.0000000Z"

// StringConverter renders any index value as text. The index materializer
// uses it to fill the StringValue column for values whose type class has no
// typed column, queries compare such members against its output, and unique
// records store their values with it.
type StringConverter interface {
	AsString(v any) (string, error)
}

// CanonicalConverter is the default StringConverter.
//
// Encoding rules:
//   - strings are NFC normalized
//   - integers are base-10, floats use the shortest round-trip form
//   - time.Time is converted to UTC and formatted with DateTimeLayout
//   - UUIDs use the lower-case hyphenated form
//   - fmt.Stringer values use String()
//   - maps and slices are encoded as compact JSON with sorted keys
//
// NaN and infinities, channels and functions cannot be represented and
// return an error.
type CanonicalConverter struct{}

// AsString implements StringConverter.
func (CanonicalConverter) AsString(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return norm.NFC.String(val), nil
	case []byte:
		return norm.NFC.String(string(val)), nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.FormatInt(int64(val), 10), nil
	case int8:
		return strconv.FormatInt(int64(val), 10), nil
	case int16:
		return strconv.FormatInt(int64(val), 10), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case uint:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(val), 10), nil
	case uint64:
		return strconv.FormatUint(val, 10), nil
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case json.Number:
		return val.String(), nil
	case time.Time:
		return val.UTC().Format(DateTimeLayout), nil
	case uuid.UUID:
		return val.String(), nil
	case fmt.Stringer:
		return norm.NFC.String(val.String()), nil
	case map[string]any, []any:
		b, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("canonical string: %w", err)
		}
		return norm.NFC.String(string(b)), nil
	default:
		return "", fmt.Errorf("canonical string: unsupported type %T", v)
	}
}

func formatFloat(f float64, bits int) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("canonical string: %v cannot be represented", f)
	}
	return strconv.FormatFloat(f, 'g', -1, bits), nil
}
