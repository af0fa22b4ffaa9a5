package condition

import (
	"fmt"
	"strconv"
	"strings"
)

// ToFloat64 converts a value of various numeric types to a float64. It
// returns the converted value and whether the conversion succeeded.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case float32:
		return float64(val), true
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(val, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Compare orders two row values for in-memory sorting. Nils sort first,
// numbers compare numerically, strings lexically, booleans false-before-true;
// mixed or unknown types fall back to their string representation.
func Compare(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if aNum, okA := ToFloat64(a); okA {
		if bNum, okB := ToFloat64(b); okB {
			switch {
			case aNum < bNum:
				return -1
			case aNum > bNum:
				return 1
			default:
				return 0
			}
		}
	}

	if aBool, okA := a.(bool); okA {
		if bBool, okB := b.(bool); okB {
			switch {
			case aBool == bBool:
				return 0
			case bBool:
				return -1
			default:
				return 1
			}
		}
	}

	aStr, okA := a.(string)
	if !okA {
		aStr = fmt.Sprintf("%v", a)
	}
	bStr, okB := b.(string)
	if !okB {
		bStr = fmt.Sprintf("%v", b)
	}
	return strings.Compare(aStr, bStr)
}
